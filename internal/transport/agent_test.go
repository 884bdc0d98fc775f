package transport

import "testing"

func TestAgent_Header(t *testing.T) {
	role := "user"
	a := &Agent{App: "storefront-cli", Version: "1.2.0", Role: func() string { return role }}

	h, err := a.Header()
	if err != nil {
		t.Fatalf("Header() error: %v", err)
	}
	if h != `app="storefront-cli", version="1.2.0", role="user"` {
		t.Errorf("Header() = %q", h)
	}

	role = "seller"
	h, _ = a.Header()
	parsed, err := ParseClientAgent(h)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Role != "seller" {
		t.Errorf("Role = %q, want seller", parsed.Role)
	}
}

func TestAgent_EmptyRoleOmitted(t *testing.T) {
	a := &Agent{App: "x", Role: func() string { return "" }}
	h, err := a.Header()
	if err != nil {
		t.Fatal(err)
	}
	if h != `app="x"` {
		t.Errorf("Header() = %q", h)
	}
}

func TestParseClientAgent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    ClientAgent
		wantErr bool
	}{
		{"full", `app="cli", version="1", role="manager"`, ClientAgent{App: "cli", Version: "1", Role: "manager"}, false},
		{"extra members ignored", `app="cli", build=42`, ClientAgent{App: "cli"}, false},
		{"empty", ``, ClientAgent{}, true},
		{"missing app", `role="user"`, ClientAgent{}, true},
		{"app not string", `app=5`, ClientAgent{}, true},
		{"malformed", `app="unterminated`, ClientAgent{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClientAgent(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
