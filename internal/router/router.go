package router

import (
	"net/http"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/handlers"
)

func InitRoutes(listingHandler *handlers.ListingHandler, accessHandler *handlers.AccessHandler, slotHandler *handlers.SlotHandler, matchHandler *handlers.MatchHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("/api/listings", listingHandler.GetListings)
	mux.HandleFunc("/api/listings/new", listingHandler.CreateListing)
	mux.HandleFunc("GET /api/listings/{listingId}", listingHandler.GetListing)
	mux.HandleFunc("PUT /api/listings/{listingId}/status", listingHandler.UpdateModerationStatus)
	mux.HandleFunc("/api/profiles/new", listingHandler.CreateProfile)
	mux.HandleFunc("GET /api/profiles/{profileId}", listingHandler.GetProfile)

	mux.HandleFunc("/api/access/grant", accessHandler.GrantAccess)
	mux.HandleFunc("/api/access/check", accessHandler.CheckAccess)
	mux.HandleFunc("/api/access/grants", accessHandler.ListGrants)

	mux.HandleFunc("/api/slots", slotHandler.GetSlots)
	mux.HandleFunc("/api/slots/new", slotHandler.CreateSlot)
	mux.HandleFunc("POST /api/slots/{slotId}/bids/new", slotHandler.PlaceBid)
	mux.HandleFunc("GET /api/slots/{slotId}/bids/my", slotHandler.GetMyBids)
	mux.HandleFunc("POST /api/slots/{slotId}/resolve", slotHandler.ResolveSlot)

	mux.HandleFunc("/api/matches/new", matchHandler.CreateMatch)
	mux.HandleFunc("/api/matches/my", matchHandler.GetMyMatches)
	mux.HandleFunc("GET /api/matches/{matchId}", matchHandler.GetMatch)
	mux.HandleFunc("POST /api/matches/{matchId}/interest", matchHandler.MarkInterest)
	mux.HandleFunc("PUT /api/matches/{matchId}/status", matchHandler.UpdateStatus)
	mux.HandleFunc("POST /api/matches/{matchId}/messages/new", matchHandler.SendMessage)
	mux.HandleFunc("GET /api/matches/{matchId}/messages", matchHandler.GetMessages)

	return mux
}
