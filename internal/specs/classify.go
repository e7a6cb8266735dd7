package specs

import "carcompare-api/internal/matching"

// Class is the segment a name is synthesized for
type Class int

const (
	ClassDefault Class = iota
	ClassCity
	ClassLarge
	ClassPerformance
	ClassUltra
)

func (c Class) String() string {
	switch c {
	case ClassCity:
		return "city"
	case ClassLarge:
		return "large"
	case ClassPerformance:
		return "performance"
	case ClassUltra:
		return "ultra"
	default:
		return "default"
	}
}

// Keywords are matched against " " + folded name + " ", so a leading or
// trailing space anchors on a word boundary.
var (
	ultraKeywords = []string{
		" ferrari", " lamborghini", " mclaren", " bugatti", " pagani", " koenigsegg", " rimac",
		" aventador", " huracan", " chiron", " sf90", " 911 turbo", " gt2", " gt3", " amg gt",
		" r8 ", " nsx", " gt-r", " viper", " corvette",
	}
	performanceKeywords = []string{
		" m2", " m3", " m4", " m5", " m8", " amg", " rs", " type r", " type-r", " gti", " sti",
		" st ", " svr", " srt", " nismo", " cupra", " abarth", " trackhawk", " hellcat",
		" shelby", " mustang", " camaro", " supra", " brz", " 86 ", " mx-5", " z4", " cayman",
		" boxster", " 911", " quadrifoglio", " vrs", " sport",
	}
	largeKeywords = []string{
		" x5", " x6", " x7", " q7", " q8", " gle", " gls", " g-class", " xc90", " range rover",
		" land cruiser", " touareg", " cayenne", " tahoe", " suburban", " yukon", " escalade",
		" expedition", " explorer", " navigator", " grand cherokee", " wrangler", " highlander",
		" pilot", " sequoia", " telluride", " palisade", " model x", " ev9", " defender",
		" discovery", " f-150", " ram ", " silverado", " sierra", " tundra", " suv", " van ",
		" transit", " sprinter", " sharan", " carnival", " odyssey", " sienna",
	}
	cityKeywords = []string{
		" fiesta", " polo", " clio", " 208 ", " yaris", " corsa", " i10", " i20", " up ", " up! ",
		" 500 ", " panda", " picanto", " aygo", " twingo", " mini ", " ibiza", " sandero",
		" swift", " micra", " c1 ", " c3 ", " jazz", " spark", " fabia", " rio ", " mirage",
		" citigo", " smart ", " fortwo", " 107 ", " 108 ", " ka ", " adam ", " celerio", " kwid",
	}
	electricKeywords = []string{
		" electric", " ev ", " ev6", " ev9", " e-tron", " taycan", " model 3", " model s",
		" model y", " model x", " ioniq", " id.3", " id.4", " id.7", " leaf", " zoe", " e-208",
		" mach-e", " bz4x", " eqa", " eqb", " eqc", " eqe", " eqs", " i3 ", " i4 ", " ix",
		" polestar", " tesla", " e-golf", " lucid", " rivian", " rimac",
	}
	hybridKeywords = []string{" hybrid", " phev", " prius", " e-hybrid", " hev"}
)

// Classify checks the keyword sets in precedence order: ultra, performance,
// large, city, then default
func Classify(brand, model string) Class {
	name := brand + " " + model
	switch {
	case matchesAny(name, ultraKeywords):
		return ClassUltra
	case matchesAny(name, performanceKeywords):
		return ClassPerformance
	case matchesAny(name, largeKeywords):
		return ClassLarge
	case matchesAny(name, cityKeywords):
		return ClassCity
	default:
		return ClassDefault
	}
}

func matchesAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if matching.ContainsWord(name, k) {
			return true
		}
	}
	return false
}
