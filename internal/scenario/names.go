package scenario

import (
	"math/rand"
	"strings"
)

var planetSyllables = []string{
	"ar", "bel", "cor", "dra", "en", "fal", "gor", "hel", "ix", "jun",
	"kel", "lor", "mar", "nov", "or", "pra", "qua", "ros", "sol", "tar",
	"ul", "ven", "wen", "xan", "yor", "zed",
}

var vehiclePrefixes = []string{
	"Falcon", "Eagle", "Heron", "Swift", "Kestrel", "Osprey", "Condor", "Petrel",
}

var givenNames = []string{
	"Ada", "Bruno", "Cleo", "Dmitri", "Esme", "Farid", "Greta", "Hugo",
	"Ines", "Jonas", "Kira", "Lev", "Mira", "Nils", "Olga", "Pavel",
	"Quinn", "Rosa", "Sami", "Tove", "Uma", "Viktor", "Wren", "Yara",
}

// uniqueNames builds n distinct two- or three-syllable names.
func uniqueNames(rng *rand.Rand, n int, syllables []string) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		parts := 2 + rng.Intn(2)
		var b strings.Builder
		for i := 0; i < parts; i++ {
			b.WriteString(syllables[rng.Intn(len(syllables))])
		}
		name := strings.ToUpper(b.String()[:1]) + b.String()[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// personID is a short base-26 tag keeping generated person names distinct.
func personID(i int) string {
	var b []byte
	for {
		b = append([]byte{byte('A' + i%26)}, b...)
		i /= 26
		if i == 0 {
			break
		}
		i--
	}
	return string(b)
}
