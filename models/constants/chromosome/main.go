package chromosome

import (
	"fmt"
	"strconv"
	"strings"

	"vapor/api/utils"
)

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 24; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "M")
	humChroms = append(humChroms, "MT")
	return humChroms
}

// StripChrPrefix returns the bare chromosome token.
// VCFs and ANNOVAR rows disagree on carrying the "chr"
// prefix, so comparisons happen on the stripped form.
func StripChrPrefix(text string) string {
	if len(text) >= 3 && strings.EqualFold(text[0:3], "chr") {
		return text[3:]
	}
	return text
}

func IsValidHumanChromosome(text string) bool {

	bareChrom := StripChrPrefix(text)

	// Check if number can be represented as an int and is non-zero
	chromNumber, _ := strconv.Atoi(bareChrom)
	if chromNumber > 0 {
		// It can..
		// Check if it in range 1-23
		if chromNumber < 24 {
			return true
		}
	} else {
		// No it can't..
		// Check if it is an X, Y..
		loweredText := strings.ToLower(bareChrom)
		switch loweredText {
		case "x":
			return true
		case "y":
			return true
		}

		// ..or M (MT)
		if utils.StringInSlice(loweredText, []string{"m", "mt"}) {
			return true
		}
	}

	return false
}
