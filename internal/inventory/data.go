package inventory

// DefaultItems returns the built-in stock list. Spec values are kept as
// printed in the vendor datasheets; the matcher parses numbers and ranges
// out of them.
func DefaultItems() []Item {
	return []Item{
		// Welders
		{Model: "Shindaiwa DGW500DM", Type: "welder", Specs: map[string]string{"amperage": "30-500 amps", "power_source": "fuel"}},
		{Model: "Shindaiwa EGW185MS", Type: "welder", Specs: map[string]string{"amperage": "45-185 amps", "power_source": "fuel"}},
		{Model: "Shindaiwa DGW400DMK", Type: "welder", Specs: map[string]string{"amperage": "50-390 amps", "power_source": "fuel"}},
		{Model: "Shindaiwa DGW340DM", Type: "welder", Specs: map[string]string{"amperage": "55-340 amps", "power_source": "fuel"}},

		// Compressors
		{Model: "AIRMAN SAS75VD-E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "501.47 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS55VD-E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "367.27 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS37VD-E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "247.2 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS75RD6E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "490.87 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS55RD6E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "360.21 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS37RD6E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "243.67 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS22RD6E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "144.79 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS15RD6E", Type: "compressor", Specs: map[string]string{"airflow_cfm": "93.58 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN SAS8SD6C", Type: "compressor", Specs: map[string]string{"airflow_cfm": "35.31 CFM", "pressure_psi": "135 PSI"}},
		{Model: "AIRMAN SAS4SD6C", Type: "compressor", Specs: map[string]string{"airflow_cfm": "15.53 CFM", "pressure_psi": "120 PSI"}},
		{Model: "AIRMAN PDSF830S", Type: "compressor", Specs: map[string]string{"airflow_cfm": "830 CFM", "pressure_psi": "150 PSI"}},
		{Model: "AIRMAN PDSG750VRS-4C5", Type: "compressor", Specs: map[string]string{"airflow_cfm": "750-900 CFM", "pressure_psi": "200 PSI"}},
		{Model: "AIRMAN PDS750S-4B1", Type: "compressor", Specs: map[string]string{"airflow_cfm": "750 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN PDS400S", Type: "compressor", Specs: map[string]string{"airflow_cfm": "400 CFM", "pressure_psi": "100 PSI"}},
		{Model: "AIRMAN PDSF375S-DP", Type: "compressor", Specs: map[string]string{"airflow_cfm": "375 CFM", "pressure_psi": "100-150 PSI"}},
		{Model: "AIRMAN PDS185S-6C2", Type: "compressor", Specs: map[string]string{"airflow_cfm": "185 CFM", "pressure_psi": "100 PSI"}},

		// Breakers
		{Model: "Toku TCB-300", Type: "breaker"},
		{Model: "Toku TPB-60", Type: "breaker"},
		{Model: "Toku TPB-90", Type: "breaker"},

		// Water pumps
		{Model: "Koshin KTY-100D", Type: "water_pump"},
		{Model: "Koshin KTH-100 X", Type: "water_pump"},

		// Rammers
		{Model: "Sakai RS75", Type: "rammer"},

		// Generators
		{Model: "Shindaiwa DGM150BMK", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "15 kVA"}},
		{Model: "Shindaiwa DGM250MK-D", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "25 kVA"}},
		{Model: "Shindaiwa DGM450MK-D", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "45 kVA"}},
		{Model: "Shindaiwa DGM600MK-D", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "60 kVA"}},
		{Model: "AIRMAN SDG150S", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "150 kVA"}},
		{Model: "AIRMAN SDG100S", Type: "generator", Specs: map[string]string{"generator_kind": "stationary", "power_kw": "100 kVA"}},
		{Model: "Koshin GV-8000S", Type: "generator", Specs: map[string]string{"generator_kind": "portable", "power_kw": "7.2 kW"}},
		{Model: "Koshin GV-5500s", Type: "generator", Specs: map[string]string{"generator_kind": "portable", "power_kw": "5.5 kVA"}},

		// Rebar tools
		{Model: "Simpedil C54 EVO", Type: "rebar_cutter"},
		{Model: "Simpedil P54 EVO", Type: "rebar_bender"},

		// Lighting towers
		{Model: "Shindaiwa SL433IDG-B/S1W", Type: "lighting_tower", Specs: map[string]string{"led": "yes"}},
		{Model: "Trime X-SOLAR 4x65W", Type: "lighting_tower", Specs: map[string]string{"led": "yes"}},
		{Model: "Trime X-START", Type: "lighting_tower", Specs: map[string]string{"led": "yes"}},

		// Forklifts
		{Model: "LGMG CPD30", Type: "forklift", Specs: map[string]string{"load_capacity_kg": "3000 kg"}},
		{Model: "LGMG CPD25", Type: "forklift", Specs: map[string]string{"load_capacity_kg": "2500 kg"}},

		// Aerial platforms
		{Model: "LGMG AR60JE-2", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "20.12 m", "platform_height_m": "18.12 m", "power_source": "electric"}},
		{Model: "LGMG AR60J-2", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "20.12 m", "platform_height_m": "18.12 m", "power_source": "fuel"}},
		{Model: "LGMG AR65J", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "21.58 m", "platform_height_m": "19.58 m", "power_source": "fuel"}},
		{Model: "LGMG AR65JE-LI", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "21.58 m", "platform_height_m": "19.58 m", "power_source": "electric"}},
		{Model: "LGMG AR52J", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "17.70 m", "platform_height_m": "15.7 m", "power_source": "fuel"}},
		{Model: "LGMG A45JE-LI", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "16.09 m", "platform_height_m": "14.09 m", "power_source": "electric"}},
		{Model: "LGMG A30JE", Type: "platform", Specs: map[string]string{"platform_kind": "articulated", "working_height_m": "11 m", "platform_height_m": "9 m", "power_source": "electric"}},
		{Model: "LGMG SS1230E", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "5.6 m", "platform_height_m": "3.6 m", "power_source": "electric"}},
		{Model: "LGMG SS1932E", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "7.5 m", "platform_height_m": "5.5 m", "power_source": "electric"}},
		{Model: "LGMG S2632E II", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "10 m", "platform_height_m": "8 m", "power_source": "electric"}},
		{Model: "LGMG S3246E II", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "12 m", "platform_height_m": "10 m", "power_source": "electric"}},
		{Model: "LGMG S4046E II", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "14 m", "platform_height_m": "12 m", "power_source": "electric"}},
		{Model: "LGMG S4650EII", Type: "platform", Specs: map[string]string{"platform_kind": "scissor", "working_height_m": "15.8 m", "platform_height_m": "13.8 m", "power_source": "electric"}},

		// Telescopic handlers
		{Model: "LGMG H625", Type: "telehandler", Specs: map[string]string{"height_m": "5.94 m", "capacity_kg": "2500 kg"}},
		{Model: "LGMG H735", Type: "telehandler", Specs: map[string]string{"height_m": "7 m", "capacity_kg": "3500 kg"}},
		{Model: "LGMG H1840", Type: "telehandler", Specs: map[string]string{"height_m": "17.5 m", "capacity_kg": "4000 kg"}},
	}
}
