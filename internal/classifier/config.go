package classifier

// VariantConfig is a single textual pattern identifying a branch. When Reject
// is set, a candidate match is discarded if the text immediately following it
// matches the reject pattern. This stands in for negative lookahead, which the
// regexp engine does not support.
type VariantConfig struct {
	Match  string `toml:"match"`
	Reject string `toml:"reject"`
}

// BranchConfig binds a branch code to its pattern variants. Every variant is
// evaluated and the branch scores with its closest match.
type BranchConfig struct {
	Code     string          `toml:"code"`
	Variants []VariantConfig `toml:"variants"`
}

// FragmentConfig binds a branch code to subject-code fragments used as a
// fallback when no branch pattern matches the filename text.
type FragmentConfig struct {
	Branch    string   `toml:"branch"`
	Fragments []string `toml:"fragments"`
}

// Config holds the classification rule set. All fields have defaults covering
// the standard engineering curriculum naming conventions; deployments with
// unusual archive naming can override them.
type Config struct {
	Prefixes       []string         `toml:"prefixes"`
	FallbackBranch string           `toml:"fallback_branch"`
	Branches       []BranchConfig   `toml:"branches"`
	Fragments      []FragmentConfig `toml:"fragments"`
}

// Finalize applies defaults for any unset rule groups.
func (c *Config) Finalize() error {
	c.loadDefaults()
	return nil
}

// Merge overwrites rule groups present in the overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Prefixes != nil {
		c.Prefixes = overlay.Prefixes
	}
	if overlay.FallbackBranch != "" {
		c.FallbackBranch = overlay.FallbackBranch
	}
	if overlay.Branches != nil {
		c.Branches = overlay.Branches
	}
	if overlay.Fragments != nil {
		c.Fragments = overlay.Fragments
	}
}

func (c *Config) loadDefaults() {
	if len(c.Prefixes) == 0 {
		c.Prefixes = []string{
			"BSC", "ESC", "PCC", "HSMC", "MC", "OEC", "PEC", "ST", "SE",
			"TEE", "BE", "UB", "PS", "US", "MMCS", "STUG", "STPG", "BP",
			"MPG", "MPH", "MED", "IN", "ET", "PSES", "PEPS", "PECS", "PCSS",
		}
	}
	if c.FallbackBranch == "" {
		c.FallbackBranch = "CSE"
	}
	if len(c.Branches) == 0 {
		c.Branches = defaultBranches()
	}
	if len(c.Fragments) == 0 {
		c.Fragments = defaultFragments()
	}
}

func defaultBranches() []BranchConfig {
	return []BranchConfig{
		{
			Code: "CSE",
			Variants: []VariantConfig{
				{Match: `Computer\s+Science\s+(?:and\s+)?Engineering`},
				{Match: `\bComputer\s+Science\b`},
				{Match: `\bCSE\b`},
				{Match: `\bCS\b`},
			},
		},
		{
			Code: "IT",
			Variants: []VariantConfig{
				{Match: `Information\s+Technology`},
				{Match: `\bIT\b`},
				{Match: `\bI\.T\b`},
			},
		},
		{
			Code: "ME",
			Variants: []VariantConfig{
				{Match: `Mechanical\s+Engineering`},
				{Match: `\bMechanical\b`, Reject: `^\s*Engineering\s*\(Model`},
				{Match: `\bME\b`, Reject: `^\s*-`},
			},
		},
		{
			Code: "CE",
			Variants: []VariantConfig{
				{Match: `Civil\s+Engineering`},
				{Match: `\bCivil\b`},
				{Match: `\bCE\b`, Reject: `^[\d-]`},
			},
		},
		{
			Code: "EE",
			Variants: []VariantConfig{
				{Match: `Electrical\s+(?:Electronics\s+and\s+Power\s+)?Engineering`},
				{Match: `Electrical\s+Engineering`},
				{Match: `\bElectrical\b`},
				{Match: `\bEE\b`},
				{Match: `Electronics\s+and\s+Power`},
			},
		},
		{
			Code: "ECE",
			Variants: []VariantConfig{
				{Match: `Electronics\s+and\s+(?:Communication|Telecommunication)`},
				{Match: `Telecommunication\s+Engineering`},
				{Match: `\bElectronics\b`, Reject: `^\s+and\s+Power`},
				{Match: `\bECE\b`},
				{Match: `Instrumentation\s+Engineering`},
			},
		},
	}
}

func defaultFragments() []FragmentConfig {
	return []FragmentConfig{
		{Branch: "CSE", Fragments: []string{"CS", "IT"}},
		{Branch: "ME", Fragments: []string{"ME", "MED"}},
		{Branch: "CE", Fragments: []string{"CE", "CIV"}},
		{Branch: "EE", Fragments: []string{"EE", "EL", "EP"}},
		{Branch: "ECE", Fragments: []string{"EC", "ET", "IN"}},
	}
}
