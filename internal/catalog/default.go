package catalog

import "github.com/AlphaCLabs/LeadPipe/internal/models"

// Default returns the built-in machinery catalog. Deployments can replace it
// with a JSON file via LoadFile; the engine only sees the Catalog interface
// surface either way.
func Default() *Catalog {
	return New(DefaultConfigs())
}

// DefaultConfigs returns the built-in product configurations in interview
// order. Categories without detail fields go straight from product type to
// the quote question.
func DefaultConfigs() []ProductConfig {
	detail := func(name, question, rationale string, vt ValueType, op CompareOp, unit string) FieldDescriptor {
		return FieldDescriptor{
			Name:                     name,
			Question:                 question,
			Rationale:                rationale,
			ValueType:                vt,
			Required:                 true,
			CompareOp:                op,
			Unit:                     unit,
			CountsNegativeAsAnswered: true,
		}
	}
	return []ProductConfig{
		{
			TypeID:      "welder",
			DisplayName: "Welder",
			Fields: []FieldDescriptor{
				detail("amperage", "What amperage do you need?",
					"To recommend the right model for the job", ValueTypeNumber, CompareGte, "amps"),
				detail("power_source", "What power source do you need: electric or fuel?",
					"To recommend the right model for the job", ValueTypeSelection, CompareEq, ""),
			},
		},
		{
			TypeID:      "compressor",
			DisplayName: "Air Compressor",
			Fields: []FieldDescriptor{
				detail("airflow_cfm", "How much air volume in CFM do you need?",
					"To select the right output", ValueTypeNumber, CompareGte, "CFM"),
				detail("pressure_psi", "How much pressure in PSI do you need?",
					"To select the right output", ValueTypeNumber, CompareGte, "PSI"),
			},
		},
		{
			TypeID:      "breaker",
			DisplayName: "Breaker",
		},
		{
			TypeID:      "water_pump",
			DisplayName: "Water Pump",
		},
		{
			TypeID:      "rammer",
			DisplayName: "Rammer",
		},
		{
			TypeID:      "generator",
			DisplayName: "Generator",
			Fields: []FieldDescriptor{
				detail("generator_kind", "What kind of generator do you need: stationary or portable?",
					"To select the right generator", ValueTypeSelection, CompareEq, ""),
				detail("power_kw", "What generator output do you need in kW?",
					"To select the right generator", ValueTypeNumber, CompareGte, "kW"),
			},
		},
		{
			TypeID:      "rebar_cutter",
			DisplayName: "Rebar Cutter",
		},
		{
			TypeID:      "rebar_bender",
			DisplayName: "Rebar Bender",
		},
		{
			TypeID:      "lighting_tower",
			DisplayName: "Lighting Tower",
			Fields: []FieldDescriptor{
				detail("led", "Do you prefer LED lighting?",
					"To determine the lighting type needed", ValueTypeBoolean, CompareEq, ""),
			},
		},
		{
			TypeID:      "forklift",
			DisplayName: "Forklift",
			Fields: []FieldDescriptor{
				detail("load_capacity_kg", "How much weight do you need to lift?",
					"To determine the capacity needed", ValueTypeNumber, CompareGte, "kg"),
			},
		},
		{
			TypeID:      "platform",
			DisplayName: "Aerial Platform",
			Fields: []FieldDescriptor{
				detail("platform_kind", "What kind of platform do you need: articulated or scissor?",
					"To select the right platform", ValueTypeSelection, CompareContains, ""),
				detail("working_height_m", "What working height do you need?",
					"To make sure the machine reaches the required height", ValueTypeNumber, CompareGte, "m"),
				detail("platform_height_m", "What platform height do you need?",
					"To make sure the machine reaches the required height", ValueTypeNumber, CompareGte, "m"),
				detail("power_source", "What power source do you need?",
					"To confirm the power source", ValueTypeSelection, CompareEq, ""),
			},
		},
		{
			TypeID:      "telehandler",
			DisplayName: "Telescopic Handler",
			Fields: []FieldDescriptor{
				detail("height_m", "What height do you need to reach?",
					"To determine the height needed", ValueTypeNumber, CompareGte, "m"),
				detail("capacity_kg", "How much weight do you need to move?",
					"To determine the capacity needed", ValueTypeNumber, CompareGte, "kg"),
			},
		},
	}
}

func defaultCompanyFields() []FieldDescriptor {
	required := func(name, question string) FieldDescriptor {
		return FieldDescriptor{
			Name:      name,
			Question:  question,
			ValueType: ValueTypeText,
			Required:  true,
			CompareOp: CompareEq,
		}
	}
	optional := func(name, question string) FieldDescriptor {
		f := required(name, question)
		f.Required = false
		return f
	}
	return []FieldDescriptor{
		required(models.FieldCompanyName, "your company name"),
		required(models.FieldLineOfBusiness, "your company's line of business"),
		required(models.FieldLocation, "where the equipment is needed"),
		required(models.FieldUsageOrResale, "whether it is for your own use or for resale"),
		required(models.FieldEmail, "a contact email"),
		optional(models.FieldPhone, "a contact phone number"),
		optional(models.FieldWebsite, "your company website"),
	}
}
