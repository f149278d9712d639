package seats

import (
	"errors"
	"testing"

	"boxoffice/internal/shared/apperr"

	"github.com/google/uuid"
)

func TestSeatIdentity_Keys(t *testing.T) {
	t.Parallel()

	eventID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	sectionID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	identity := SeatIdentity{
		EventID:    eventID,
		SectionID:  sectionID,
		Row:        "A",
		SeatNumber: "12",
	}

	t.Run("virtual id is section scoped", func(t *testing.T) {
		want := sectionID.String() + ":A:12"
		if got := identity.VirtualID(); got != want {
			t.Fatalf("VirtualID() = %q, want %q", got, want)
		}
	})

	t.Run("virtual id round-trips", func(t *testing.T) {
		parsed, err := ParseVirtualID(eventID, identity.VirtualID())
		if err != nil {
			t.Fatalf("ParseVirtualID: %v", err)
		}
		if parsed != identity {
			t.Fatalf("parsed = %+v, want %+v", parsed, identity)
		}
	})

	t.Run("lease key round-trips", func(t *testing.T) {
		parsed, err := ParseLeaseKey(identity.LeaseKey())
		if err != nil {
			t.Fatalf("ParseLeaseKey: %v", err)
		}
		if parsed != identity {
			t.Fatalf("parsed = %+v, want %+v", parsed, identity)
		}
	})

	t.Run("same seat always yields the same keys", func(t *testing.T) {
		other := SeatIdentity{EventID: eventID, SectionID: sectionID, Row: "A", SeatNumber: "12"}
		if other.LeaseKey() != identity.LeaseKey() {
			t.Fatal("expected identical lease keys for identical seats")
		}
	})
}

func TestParseVirtualID_Malformed(t *testing.T) {
	t.Parallel()

	eventID := uuid.New()

	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing parts", "A:12"},
		{"bad section uuid", "not-a-uuid:A:12"},
		{"empty row", uuid.New().String() + "::12"},
		{"empty seat number", uuid.New().String() + ":A:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVirtualID(eventID, tc.in)
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
				t.Fatalf("expected bad-request error, got %v", err)
			}
		})
	}
}
