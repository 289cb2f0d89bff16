package auth

// PasswordStrength scores pw from 0 to 100 the way the sign-up form meter
// does: length, lower case, upper case, digits and symbols each add points.
func PasswordStrength(pw string) int {
	var lower, upper, digit, other bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	score := 0
	if len([]rune(pw)) >= 8 {
		score += 20
	}
	if lower {
		score += 20
	}
	if upper {
		score += 20
	}
	if digit {
		score += 15
	}
	if other {
		score += 15
	}
	return min(score, 100)
}

// StrengthLabel names the meter band for a score.
func StrengthLabel(score int) string {
	switch {
	case score < 30:
		return "weak"
	case score < 60:
		return "fair"
	case score < 80:
		return "good"
	default:
		return "strong"
	}
}
