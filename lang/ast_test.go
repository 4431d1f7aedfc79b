package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestPrint(t *testing.T) {
	nodes, err := Lex("Hi {{Hearts:{{Spouse}}}}!")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	var sb strings.Builder
	if err := Print(&sb, nodes); err != nil {
		t.Fatalf("print error: %v", err)
	}

	want := strings.Join([]string{
		`Literal: "Hi "`,
		`Token: Hearts`,
		`  Input: "{{Spouse}}"`,
		`    Token: Spouse`,
		`Literal: "!"`,
		``,
	}, "\n")

	if got := sb.String(); got != want {
		t.Errorf("Print output:\n%s\nwant:\n%s", got, want)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++

	return 0, errors.New("write failed")
}

func TestPrint_WriteError(t *testing.T) {
	nodes, err := Lex("a {{b}} c")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	w := &failingWriter{}
	if err := Print(w, nodes); err == nil {
		t.Fatal("expected error")
	}

	if w.n != 1 {
		t.Errorf("expected writing to stop after the first failure, got %d writes", w.n)
	}
}

func TestWalk_StopsEarly(t *testing.T) {
	nodes, err := Lex("{{a:{{b}}}} {{c}}")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	count := 0
	for range Walk(nodes) {
		count++
		if count == 2 {
			break
		}
	}

	if count != 2 {
		t.Errorf("expected 2 visits, got %d", count)
	}
}

func TestWalk_VisitsEveryNode(t *testing.T) {
	nodes, err := Lex("x{{a:y{{b}}}}z")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	var raws []string
	for n := range Walk(nodes) {
		raws = append(raws, n.Raw())
	}

	want := []string{"x", "{{a:y{{b}}}}", "y", "{{b}}", "z"}
	if strings.Join(raws, "|") != strings.Join(want, "|") {
		t.Errorf("Walk = %q, want %q", raws, want)
	}
}
