package validate

import (
	"testing"

	"github.com/nleskov/modelscout/internal/model"
)

func newTestValidator() *Validator {
	return NewValidator(model.DefaultConfig().Validation)
}

func TestValidate_BareBrandRejected(t *testing.T) {
	v := newTestValidator()

	for _, brand := range []string{"Apple", "Dyson", "Sony", "samsung", "NVIDIA"} {
		if v.Validate(brand, "") {
			t.Errorf("Expected bare brand %q to be rejected", brand)
		}
	}
}

func TestValidate_CompleteModelAccepted(t *testing.T) {
	v := newTestValidator()

	for _, name := range []string{
		"Dyson V15 Detect",
		"Sony WH-1000XM5",
		"Shark Navigator Lift-Away",
		"iPhone 15 Pro Max",
		"Lenovo ThinkPad X1 Carbon",
	} {
		if !v.Validate(name, "") {
			t.Errorf("Expected %q to be accepted", name)
		}
	}
}

func TestValidate_PricesDatesUnitsRejected(t *testing.T) {
	v := newTestValidator()

	for _, text := range []string{
		"$49.99",
		"€1200",
		"49.99",
		"12/31/2024",
		"500GB",
		"1500 ", // Numeric-only after trimming
		"85%",
	} {
		if v.Validate(text, "") {
			t.Errorf("Expected %q to be rejected as price/date/unit", text)
		}
	}
}

func TestValidate_LengthBounds(t *testing.T) {
	v := newTestValidator()

	if v.Validate("V1", "") {
		t.Error("Expected too-short text to be rejected")
	}

	long := "Super Ultra Mega Deluxe Premium Professional Edition Model Number One Thousand And Seven"
	if v.Validate(long, "") {
		t.Error("Expected over-length text to be rejected")
	}
}

func TestValidate_SingleTokenModelCode(t *testing.T) {
	v := newTestValidator()

	if !v.Validate("WH-1000XM5", "") {
		t.Error("Expected single-token model code with letters and digits to pass")
	}
	if v.Validate("Roomba", "") {
		t.Error("Expected single bare word without digits to fail the structure check")
	}
}

func TestValidate_GPUCategoryPrecedence(t *testing.T) {
	v := newTestValidator()

	// Generic rules would reject these: "RTX" prefix is short and the
	// text has no known brand word. The GPU validator allows them.
	for _, name := range []string{"RTX 4070", "GTX 1660 Ti", "RX 7800 XT", "Arc A770"} {
		if !v.Validate(name, "graphics card") {
			t.Errorf("Expected GPU model %q to be accepted for a GPU query", name)
		}
	}

	// Model numbers from series that never shipped.
	for _, name := range []string{"RTX 9090", "RX 9999", "Arc 770"} {
		if v.Validate(name, "graphics card") {
			t.Errorf("Expected nonexistent GPU model %q to be rejected", name)
		}
	}
}

func TestValidate_GPUSanityOnlyForGPUQueries(t *testing.T) {
	v := newTestValidator()

	// The never-shipped-series rejection belongs to the GPU validator.
	// Without GPU context the generic structure rule is in charge, and
	// "RTX 9090" looks like any other brand + model token pair.
	if !v.Validate("RTX 9090", "vacuum cleaner") {
		t.Error("Expected GPU sanity rules to stay out of non-GPU queries")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	v := newTestValidator()

	for i := 0; i < 10; i++ {
		if !v.Validate("Dyson V15 Detect", "vacuum cleaner") {
			t.Fatal("Expected stable verdict across repeated calls")
		}
		if v.Validate("Apple", "") {
			t.Fatal("Expected stable rejection across repeated calls")
		}
	}
}

func TestValidate_WhitespaceNormalized(t *testing.T) {
	v := newTestValidator()

	if !v.Validate("  Dyson   V15   Detect  ", "") {
		t.Error("Expected whitespace-padded input to be normalized and accepted")
	}
	if v.Validate("   ", "") {
		t.Error("Expected blank input to be rejected")
	}
}
