package domain

const kcalToKJ = 4.184

// ConvertEnergy converts an energy value between "kcal" and "kj".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertEnergy(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	if from == "kcal" && to == "kj" {
		return v * kcalToKJ
	}
	if from == "kj" && to == "kcal" {
		return v / kcalToKJ
	}
	return v
}
