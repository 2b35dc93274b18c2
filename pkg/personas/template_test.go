package personas

import "testing"

func TestRenderWithTemplate(t *testing.T) {
	p := &Persona{
		Name:     "pai",
		Template: "{{.Agent}} says: {{.Message}}",
	}

	got, err := p.Render(SpeechContext{Agent: "pai", Message: "Build complete"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := "pai says: Build complete"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderWithoutTemplate(t *testing.T) {
	p := &Persona{Name: "plain"}

	got, err := p.Render(SpeechContext{Agent: "plain", Message: "Build complete"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Build complete" {
		t.Errorf("Render() = %q, want the message unchanged", got)
	}
}

func TestRenderReusesCachedTemplate(t *testing.T) {
	p := &Persona{Name: "cached", Template: "{{.Message}}!"}

	for i := 0; i < 2; i++ {
		got, err := p.Render(SpeechContext{Message: "Hi"})
		if err != nil {
			t.Fatalf("Render %d: %v", i, err)
		}
		if got != "Hi!" {
			t.Errorf("Render %d = %q, want %q", i, got, "Hi!")
		}
	}
}
