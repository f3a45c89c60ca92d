package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

// PingHandler handles GET requests to /api/ping.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		log.Println(err)
	}
}
