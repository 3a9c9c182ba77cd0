package translation

const (
	// tokensPerChar is a deliberately generous chars-to-tokens factor;
	// translations can be longer than their source.
	tokensPerChar = 3

	minTokenBudget = 500
	maxTokenBudget = 2500
)

// EstimateTokens maps input length to a bounded output-token allowance.
func EstimateTokens(inputLength int) int {
	estimate := inputLength * tokensPerChar
	if estimate < minTokenBudget {
		return minTokenBudget
	}
	if estimate > maxTokenBudget {
		return maxTokenBudget
	}
	return estimate
}

// EffectiveBudget returns the token ceiling to use for a call: the quality
// tier sets the upper bound, the estimator tightens it for short inputs.
func EffectiveBudget(profile QualityProfile, inputLength int) int {
	estimate := EstimateTokens(inputLength)
	if profile.MaxTokens < estimate {
		return profile.MaxTokens
	}
	return estimate
}
