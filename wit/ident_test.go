package wit

import "testing"

func TestParseIdentRoundTrip(t *testing.T) {
	cases := []string{
		"golem:chat-agent",
		"golem:chat-agent@1.2.0",
		"golem:chat-agent/variant-b",
		"golem:chat-agent/variant-b@1.2.0",
	}
	for _, s := range cases {
		id, err := ParseIdent(s)
		if err != nil {
			t.Fatalf("ParseIdent(%q): %v", s, err)
		}
		if got := id.String(); got != s {
			t.Errorf("ParseIdent(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseIdentUnversionedString(t *testing.T) {
	id, err := ParseIdent("golem:chat-agent/variant-b@1.2.0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := id.UnversionedString(), "golem:chat-agent/variant-b"; got != want {
		t.Errorf("UnversionedString() = %q, want %q", got, want)
	}
}

func TestParseIdentRejectsMissingNamespaceOrPackage(t *testing.T) {
	cases := []string{"", "chat-agent", ":chat-agent", "golem:"}
	for _, s := range cases {
		if _, err := ParseIdent(s); err == nil {
			t.Errorf("ParseIdent(%q): expected error, got nil", s)
		}
	}
}
