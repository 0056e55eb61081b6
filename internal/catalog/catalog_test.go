package catalog

import "testing"

func TestNormalizeColor(t *testing.T) {
	c := Default()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"b", "b", false},
		{" B ", "b", false},
		{"c", "c", false},
		{"x", "", true},
		{"black", "", true},
	}

	for _, tt := range tests {
		got, err := c.NormalizeColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithSets(t *testing.T) {
	c := Default()

	same := c.WithSets(nil)
	if len(same.Sets) != len(c.Sets) {
		t.Errorf("empty override changed sets: %d", len(same.Sets))
	}

	custom := c.WithSets([]Option{{Value: "neo", Label: "Kamigawa: Neon Dynasty"}})
	if len(custom.Sets) != 1 || custom.Sets[0].Value != "neo" {
		t.Errorf("unexpected sets %+v", custom.Sets)
	}
	if len(c.Sets) != 4 {
		t.Errorf("original catalog modified: %+v", c.Sets)
	}
}

func TestColorLabel(t *testing.T) {
	c := Default()
	if got := c.ColorLabel("b"); got != "Black" {
		t.Errorf("ColorLabel(b) = %q", got)
	}
	if got := c.ColorLabel("z"); got != "z" {
		t.Errorf("ColorLabel(z) = %q", got)
	}
}
