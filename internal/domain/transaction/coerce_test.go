package transaction

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "json_number", input: `42.5`, want: 42.5},
		{name: "negative_number", input: `-120`, want: -120},
		{name: "zero", input: `0`, want: 0},
		{name: "numeric_string", input: `"50000"`, want: 50000},
		{name: "numeric_string_decimal", input: `"19.99"`, want: 19.99},
		{name: "non_numeric_string", input: `"abc"`, wantErr: true},
		{name: "empty_string", input: `""`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, a)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}

			if a.Float64() != tt.want {
				t.Fatalf("got %v, want %v", a.Float64(), tt.want)
			}
		})
	}
}

func TestDateTimeUnmarshal(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		var d DateTime
		if err := json.Unmarshal([]byte(`"2024-02-29T10:30:00Z"`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)
		if !d.Time.Equal(want) {
			t.Fatalf("got %v, want %v", d.Time, want)
		}
	})

	t.Run("date_only_resolves_local", func(t *testing.T) {
		var d DateTime
		if err := json.Unmarshal([]byte(`"2024-06-15"`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
		if !d.Time.Equal(want) {
			t.Fatalf("got %v, want %v", d.Time, want)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		var d DateTime
		if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("number", func(t *testing.T) {
		var d DateTime
		if err := json.Unmarshal([]byte(`12345`), &d); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestUpdateRequestEmpty(t *testing.T) {
	var req UpdateTransactionRequest

	if !req.Empty() {
		t.Fatal("zero request should be empty")
	}

	category := "Food"
	req.Category = &category

	if req.Empty() {
		t.Fatal("request with a field should not be empty")
	}
}
