package fragments

// Topics is the fixed extraction vocabulary. Its order is the canonical
// iteration order everywhere fragments are grouped or chunked.
var Topics = []string{
	"mechanical_properties",
	"sample_info",
	"experimental_conditions",
	"spall_results",
	"test_conditions",
	"impactor_thickness",
	"sample_thickness",
	"grain_size",
	"initial_density",
	"sound_speeds",
	"flyer_information",
	"impact_velocity",
	"peak_stress",
	"strain_rate",
	"pulse_duration",
	"gas_gun_details",
	"temperature_conditions",
	"material_treatment",
	"synthesis_method",
	"references",
}

var topicIndex = func() map[string]int {
	m := make(map[string]int, len(Topics))
	for i, t := range Topics {
		m[t] = i
	}
	return m
}()

func KnownTopic(name string) bool {
	_, ok := topicIndex[name]
	return ok
}

// topicKeywords routes an element toward topics by substring match on its
// description, headers and caption text (lowercased).
var topicKeywords = map[string][]string{
	"mechanical_properties":   {"yield", "hardness", "modulus", "ultimate stress", "strength", "kic"},
	"sample_info":             {"sample", "material", "specimen"},
	"experimental_conditions": {"experiment", "condition", "setup", "shot"},
	"spall_results":           {"spall", "pullback", "fracture"},
	"test_conditions":         {"test"},
	"impactor_thickness":      {"impactor"},
	"sample_thickness":        {"thickness"},
	"grain_size":              {"grain"},
	"initial_density":         {"density"},
	"sound_speeds":            {"sound speed", "longitudinal", "shear wave", "bulk wave"},
	"flyer_information":       {"flyer"},
	"impact_velocity":         {"impact velocity", "velocity"},
	"peak_stress":             {"peak stress", "peak pressure", "hugoniot"},
	"strain_rate":             {"strain rate"},
	"pulse_duration":          {"pulse"},
	"gas_gun_details":         {"gas gun", "gun", "launcher"},
	"temperature_conditions":  {"temperature", "heated", "cryogenic"},
	"material_treatment":      {"treatment", "anneal", "rolled"},
	"synthesis_method":        {"synthesis", "cast", "deposit", "sinter"},
	"references":              {"reference", "bibliograph", "et al"},
}
