package research

import (
	"encoding/json"
	"testing"
)

func TestSourceUnmarshalAliases(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Source
	}{
		{
			name: "Canonical fields",
			json: `{"title":"T","url":"https://example.com","summary":"S"}`,
			want: Source{Title: "T", URL: "https://example.com", Summary: "S"},
		},
		{
			name: "Alias fields",
			json: `{"name":"N","link":"https://example.org","content":"C"}`,
			want: Source{Title: "N", URL: "https://example.org", Summary: "C"},
		},
		{
			name: "Canonical wins over alias",
			json: `{"title":"T","name":"N","url":"u","link":"l","summary":"S","content":"C"}`,
			want: Source{Title: "T", URL: "u", Summary: "S"},
		},
		{
			name: "Empty canonical falls back to alias",
			json: `{"title":"","name":"N","url":"","link":"l"}`,
			want: Source{Title: "N", URL: "l"},
		},
		{
			name: "Empty object",
			json: `{}`,
			want: Source{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Source
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.json, got, tt.want)
			}
		})
	}
}

func TestActivityString(t *testing.T) {
	tests := []struct {
		name     string
		activity Activity
		want     string
	}{
		{"Both fields", Activity{Type: "search", Message: "crawling docs"}, "[search] crawling docs"},
		{"Missing type", Activity{Message: "still working"}, "[event] still working"},
		{"Missing message", Activity{Type: "analyze"}, "[analyze] ..."},
		{"Missing both", Activity{}, "[event] ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParamsWithDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Params
		want  Params
	}{
		{"All zero", Params{}, Params{MaxDepth: 3, TimeLimit: 180, MaxURLs: 10}},
		{"Partial", Params{MaxDepth: 5}, Params{MaxDepth: 5, TimeLimit: 180, MaxURLs: 10}},
		{"Negative treated as unset", Params{TimeLimit: -1}, Params{MaxDepth: 3, TimeLimit: 180, MaxURLs: 10}},
		{"Fully set", Params{MaxDepth: 1, TimeLimit: 30, MaxURLs: 2}, Params{MaxDepth: 1, TimeLimit: 30, MaxURLs: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.WithDefaults(); got != tt.want {
				t.Errorf("WithDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFailure(t *testing.T) {
	res := Failure("boom")

	if res.Success {
		t.Error("Failure() Success = true, want false")
	}
	if res.Error != "boom" {
		t.Errorf("Failure() Error = %q, want %q", res.Error, "boom")
	}
	if res.FinalAnalysis != "" {
		t.Errorf("Failure() FinalAnalysis = %q, want empty", res.FinalAnalysis)
	}
	if res.Sources == nil || len(res.Sources) != 0 {
		t.Errorf("Failure() Sources = %#v, want empty non-nil slice", res.Sources)
	}

	// The serialized form keeps an empty sources array, not null
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"success":false,"finalAnalysis":"","sources":[],"error":"boom"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
