package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Nil(t, DedupeAndTrimLower(nil))
	assert.Equal(t, []string{}, DedupeAndTrimLower([]string{"", "  "}))
	assert.Equal(t,
		[]string{"ann@firma.pl", "bob@firma.de"},
		DedupeAndTrimLower([]string{"  Ann@Firma.pl ", "bob@firma.de", "ANN@firma.pl", ""}),
		"first occurrence wins and order is kept",
	)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", Capitalize("   "))
	assert.Equal(t, "Warszawa", Capitalize("WARSZAWA"))
	assert.Equal(t, "Łódź", Capitalize("ŁÓDŹ"))
	assert.Equal(t, "Firma sp. z o.o.", Capitalize(" FIRMA SP. Z O.O. "))
}
