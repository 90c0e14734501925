// Package pledge holds the pledge the wizard asks users to acknowledge.
package pledge

type Pledge struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

// Fixed is the campaign pledge.
var Fixed = Pledge{
	ID:          1,
	Text:        "I WILL RESPECT THE NATIONAL FLAG",
	Explanation: "My Pledge to the Nation",
}

// Points are the individual commitments acknowledged on the reading step.
var Points = []string{
	"I pledge to hoist the Indian National Flag correctly, with the saffron band on top.",
	"I pledge to display the Indian National Flag only on a proper staff or stand.",
	"I pledge to use Indian National Flags made from non-plastic, eco-friendly materials.",
	"I pledge to display the Indian National Flag only when it is clean, dignified, and in good condition.",
	"I pledge not to misuse the Indian National Flag as clothing, decoration, or for advertising purposes.",
	"I pledge not to print, write, paste, or place anything on the Indian National Flag.",
	"I pledge to ensure that the Indian National Flag never touches the ground, water, or any unclean surface.",
	"I pledge to handle, fold, and store the Indian National Flag with care and respect, strictly following the Flag Code of India.",
	"I pledge to collect Indian National Flags after events, ensure they are not left in public places.",
	"I pledge to dispose of damaged flags respectfully through proper methods such as private burning or burial.",
}

// AllAcknowledged reports whether ack covers every point index.
func AllAcknowledged(ack []int) bool {
	seen := make(map[int]bool, len(Points))
	for _, i := range ack {
		if i >= 0 && i < len(Points) {
			seen[i] = true
		}
	}
	return len(seen) == len(Points)
}

// Normalize drops out-of-range and duplicate indexes, keeping order.
func Normalize(ack []int) []int {
	seen := make(map[int]bool, len(ack))
	out := make([]int, 0, len(ack))
	for _, i := range ack {
		if i < 0 || i >= len(Points) || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out
}
