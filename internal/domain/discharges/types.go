package discharges

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// FrequencyAsNeeded es el sentinel para planes "a demanda" / custom:
// no generan dosis esperadas y quedan fuera de los denominadores de adherencia.
const FrequencyAsNeeded = 0
