package redaction

var blurRadius = map[Strength]int{
	StrengthSoft:   6,
	StrengthMedium: 12,
	StrengthHard:   24,
}

// Divisors count the blocks spanning a region's longer edge, so a smaller
// divisor produces larger blocks.
var pixelateDivisor = map[Strength]int{
	StrengthSoft:   24,
	StrengthMedium: 14,
	StrengthHard:   8,
}

var strengthColor = map[Strength]string{
	StrengthSoft:   "#3ba7fe",
	StrengthMedium: "#febb3b",
	StrengthHard:   "#f87171",
}

// BlurRadius returns the box blur radius for s. Unknown strengths use medium.
func BlurRadius(s Strength) int {
	if r, ok := blurRadius[s]; ok {
		return r
	}
	return blurRadius[StrengthMedium]
}

// PixelateDivisor returns the pixelation divisor for s. Unknown strengths use medium.
func PixelateDivisor(s Strength) int {
	if d, ok := pixelateDivisor[s]; ok {
		return d
	}
	return pixelateDivisor[StrengthMedium]
}

// StrengthColor returns the UI tint used when a redaction has no explicit colour.
func StrengthColor(s Strength) string {
	if c, ok := strengthColor[s]; ok {
		return c
	}
	return strengthColor[StrengthMedium]
}
