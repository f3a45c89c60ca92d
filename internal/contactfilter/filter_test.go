package contactfilter

import "testing"

func TestScanMasksMobileNumbers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"hyphenated mobile",
			"연락주세요 010-1234-5678",
			"연락주세요 ********",
		},
		{
			"bare digit mobile",
			"제 번호는 01012345678 입니다",
			"제 번호는 ******** 입니다",
		},
		{
			"spaced out digits",
			"0 1 0 1 2 3 4 5 6 7 8 로 전화주세요",
			"******** 로 전화주세요",
		},
		{
			"dot separated",
			"010.9876.5432",
			"********",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.content)
			if !got.ContainsContact {
				t.Fatal("expected the message to be flagged")
			}
			if got.FilteredContent != tt.want {
				t.Errorf("filtered = %q, want %q", got.FilteredContent, tt.want)
			}
		})
	}
}

func TestScanMasksLandlineEmailAndHandles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"seoul landline", "사무실 02-555-1234 로 연락 바랍니다"},
		{"internet phone", "070 7777 8888"},
		{"email", "contact me at pharm.kim@example.com please"},
		{"kakao handle", "카톡 아이디 phm123 추가해주세요"},
		{"telegram handle", "텔레그램 @pharm_kim"},
		{"english messenger", "kakao id: goodpharm99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.content)
			if !got.ContainsContact {
				t.Fatalf("expected %q to be flagged", tt.content)
			}
			if got.FilteredContent == tt.content {
				t.Errorf("expected some span of %q to be masked", tt.content)
			}
		})
	}
}

func TestScanMasksSeparatedDigitRuns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"spaced last digits",
			"뒷번호는 8 8 7 7 - 6 6 5 5 4 입니다",
			"뒷번호는 ******** 입니다",
		},
		{
			"dashed fragments",
			"계좌 아니고 번호 1234-5678-9",
			"계좌 아니고 번호 ********",
		},
		{
			"paired digits",
			"네이트온 12 34 56 78 90 으로요",
			"네이트온 ******** 으로요",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.content)
			if !got.ContainsContact {
				t.Fatalf("expected %q to be flagged", tt.content)
			}
			if got.FilteredContent != tt.want {
				t.Errorf("filtered = %q, want %q", got.FilteredContent, tt.want)
			}
		})
	}
}

func TestScanLeavesPricesAlone(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"comma grouped premium", "권리금은 230,000,000원입니다"},
		{"bare amount with suffix", "보증금 50000000원 생각하고 있어요"},
		{"만원 suffix", "월세는 7500000만 아니고 750만원이에요"},
		{"plain chat", "내일 3시에 약국에서 뵙겠습니다"},
		{"short numbers", "면적은 25평이고 2층입니다"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.content)
			if got.ContainsContact {
				t.Errorf("%q should not be flagged, got %q", tt.content, got.FilteredContent)
			}
			if got.FilteredContent != tt.content {
				t.Errorf("clean content must pass through unchanged, got %q", got.FilteredContent)
			}
		})
	}
}

func TestScanFixedWidthMask(t *testing.T) {
	short := Scan("010-1234-5678")
	long := Scan("0 1 0 - 1 2 3 4 - 5 6 7 8")
	if short.FilteredContent != maskPlaceholder || long.FilteredContent != maskPlaceholder {
		t.Errorf("mask must not preserve the span width: %q vs %q",
			short.FilteredContent, long.FilteredContent)
	}
}

func TestScanMasksEachSpanOnce(t *testing.T) {
	got := Scan("카톡 kim123 아니면 010-1234-5678")
	if !got.ContainsContact {
		t.Fatal("expected the message to be flagged")
	}
	want := "******** 아니면 ********"
	if got.FilteredContent != want {
		t.Errorf("filtered = %q, want %q", got.FilteredContent, want)
	}
}
