package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Name  string `validate:"required,min=2,max=10"`
	Email string `validate:"email"`
	Ref   string `validate:"uuid"`
	Count int    `validate:"min=1,max=5"`
}

func valid() sample {
	return sample{
		Name:  "Kettle",
		Email: "brewer@example.com",
		Ref:   "5bb25db4-cfcb-4b06-8b4b-7e8a4a0c9a6d",
		Count: 3,
	}
}

func TestValidateOK(t *testing.T) {
	v := NewValidator()
	s := valid()
	if err := v.Validate(&s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	v := NewValidator()

	cases := map[string]func(*sample){
		"missing required": func(s *sample) { s.Name = "" },
		"too short":        func(s *sample) { s.Name = "x" },
		"too long":         func(s *sample) { s.Name = strings.Repeat("x", 11) },
		"no at sign":       func(s *sample) { s.Email = "brewer.example.com" },
		"at sign first":    func(s *sample) { s.Email = "@example.com" },
		"at sign last":     func(s *sample) { s.Email = "brewer@" },
		"bad uuid":         func(s *sample) { s.Ref = "not-a-uuid" },
		"int below min":    func(s *sample) { s.Count = 0 },
		"int above max":    func(s *sample) { s.Count = 6 },
	}

	for name, mutate := range cases {
		s := valid()
		mutate(&s)
		if err := v.Validate(&s); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestOptionalFieldsSkippedWhenEmpty(t *testing.T) {
	v := NewValidator()

	// email and uuid rules only apply to non-empty values
	s := sample{Name: "Kettle", Count: 1}
	if err := v.Validate(&s); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateNonStruct(t *testing.T) {
	v := NewValidator()
	if err := v.Validate("nope"); err == nil {
		t.Error("expected an error for non-struct input")
	}
}
