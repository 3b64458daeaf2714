package assettrack

import (
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("keys keep their order", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("type", "sale").Append("id", "T1").Append("paid", Q(2))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"type":"sale","id":"T1","paid":2}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional fields", func(t *testing.T) {
		spot := Q(1.5)
		var none *Quantity
		var w jsonObjectWriter
		w.Append("a", 0)
		w.Optional("b", "")
		w.Optional("c", none)
		w.Optional("d", "vault")
		w.Optional("spot", &spot)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"a":0,"d":"vault","spot":1.5}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("marshal error is kept", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("f", func() {})
		w.Append("a", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("MarshalJSON() succeeded, want an error")
		}
	})
}
