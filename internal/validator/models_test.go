package validator

import "testing"

func TestASN_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    ASN
		wantErr bool
	}{
		{`"AS3333"`, "AS3333", false},
		{`"3333"`, "3333", false},
		{`3333`, "3333", false},
		{`null`, "", false},
		{`-1`, "", true},
		{`true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got ASN
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTrustAnchorStatus_LastUpdatedTime(t *testing.T) {
	s := TrustAnchorStatus{LastUpdated: "2026-10-15T08:00:00Z"}
	if got := s.LastUpdatedTime(); got.Hour() != 8 {
		t.Errorf("Expected 08:00, got %v", got)
	}
	if !(TrustAnchorStatus{}).LastUpdatedTime().IsZero() {
		t.Error("Expected zero time for a missing timestamp")
	}
}

func TestRoa_DecodesNumericASN(t *testing.T) {
	var roa Roa
	if err := json.Unmarshal([]byte(`{"asn":64496,"prefix":"10.0.0.0/16","length":24}`), &roa); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if roa.ASN != "64496" || roa.Length != 24 {
		t.Errorf("Unexpected roa %+v", roa)
	}
}
