package pipeline

// CheckExtractionSuccess is the validation gate evaluated after each of
// the four specialist extractors. Only an explicit true proceeds to
// aggregation; nil (extractor never ran or was absorbed) and false both
// reroute to the general fallback extractor. The fallback itself never
// feeds back into this gate.
func CheckExtractionSuccess(validationPassed *bool) Stage {
	if validationPassed != nil && *validationPassed {
		return StageAggregate
	}
	return StageExtractGeneral
}
