package pkg

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// Remove filter target out of source, keep order
func Remove(slice []string, val string) []string {
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if v != val {
			out = append(out, v)
		}
	}
	return out
}

// Subtract remove every id in targets from source, keep order
func Subtract(slice []string, targets []string) []string {
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if !Contains(targets, v) {
			out = append(out, v)
		}
	}
	return out
}
