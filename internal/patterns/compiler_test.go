package patterns

import "testing"

func TestExpandPlaceholders(t *testing.T) {
	re := MustCompile(`^{FLIGHT}$`)
	if !re.MatchString("EK0393") {
		t.Error("expected EK0393 to match {FLIGHT}")
	}
	if re.MatchString("EK393") {
		t.Error("unpadded flight number must not match {FLIGHT}")
	}
}

func TestCompilerNamedCaptures(t *testing.T) {
	formats := []Format{
		{
			Name:    "sector_header",
			Pattern: `SECTOR:\s*(?P<sector>{SECTOR})`,
			Fields:  []string{"sector"},
		},
	}
	c := NewCompiler(formats, nil)
	if err := c.Compile(); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	m := c.Parse("SECTOR: DXBFRA")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.FormatName != "sector_header" {
		t.Errorf("expected format sector_header, got %s", m.FormatName)
	}
	if m.Captures["sector"] != "DXBFRA" {
		t.Errorf("expected sector DXBFRA, got %q", m.Captures["sector"])
	}
}

func TestCompilerLocalOverride(t *testing.T) {
	formats := []Format{
		{Name: "uld", Pattern: `^(?P<num>{ULDNUM})$`},
	}
	c := NewCompiler(formats, map[string]string{"ULDNUM": `BULK/\d{2}[A-Z]{3}`})
	if err := c.Compile(); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if m := c.Parse("BULK/05AUG"); m == nil || m.Captures["num"] != "BULK/05AUG" {
		t.Errorf("local override not applied: %+v", m)
	}
	if m := c.Parse("PMC31580EK"); m != nil {
		t.Errorf("global pattern should have been overridden, got %+v", m)
	}
}

func TestCompilerFirstFormatWins(t *testing.T) {
	formats := []Format{
		{Name: "awb", Pattern: `(?P<awb>{AWB})`},
		{Name: "digits", Pattern: `(?P<d>\d+)`},
	}
	c := NewCompiler(formats, nil)
	if err := c.Compile(); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	m := c.Parse("176-12345675")
	if m == nil || m.FormatName != "awb" {
		t.Fatalf("expected awb format first, got %+v", m)
	}
}
