package attempt

import (
	"encoding/json"
	"hash/fnv"
	"math/rand"
)

// Shuffling is seeded from the attempt id alone, so the permutation is a pure
// function of the attempt: every refetch of the same attempt reproduces the
// same order, while different attempts on the same config diverge. No ambient
// RNG state is consulted.

func seedFor(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

// shuffleQuestions reorders qs in place using a permutation derived from the
// attempt id. Lists of one element are left untouched.
func shuffleQuestions(attemptID string, qs []ExamQuestion) {
	if len(qs) < 2 {
		return
	}
	rng := rand.New(rand.NewSource(seedFor(attemptID)))
	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

// shuffleOptions reorders a question's options array, sub-seeded per question
// so each question's option order is stable for the attempt. Non-array option
// payloads pass through unchanged.
func shuffleOptions(attemptID, questionID string, options json.RawMessage) json.RawMessage {
	if len(options) == 0 {
		return options
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(options, &arr); err != nil || len(arr) < 2 {
		return options
	}
	rng := rand.New(rand.NewSource(seedFor(attemptID, questionID)))
	rng.Shuffle(len(arr), func(i, j int) { arr[i], arr[j] = arr[j], arr[i] })
	out, err := json.Marshal(arr)
	if err != nil {
		return options
	}
	return out
}
