package dff

// ParsedArgs is the result of parsing a process's command line for the two
// distributed-execution options (spec.md §4.3/§6).
type ParsedArgs struct {
	ConfigPath string
	GroupName  string
	// Rest holds every argument the parser didn't recognize, in original
	// order, for the caller to forward to its own flag parser — argv
	// rewriting per spec.md §4.3, rather than a cobra/flag.FlagSet, since
	// those would error out on the unrecognized-to-them DFF_* options
	// instead of forwarding them.
	Rest []string
}

// ParseArgs scans argv (argv[0] is the program name and is preserved as
// Rest[0]) for "--DFF_Config <path>" and "--DFF_GName <name>", both
// required. Every other argument is forwarded untouched and in order.
func ParseArgs(argv []string) (*ParsedArgs, error) {
	out := &ParsedArgs{}
	if len(argv) > 0 {
		out.Rest = append(out.Rest, argv[0])
	}

	haveConfig, haveGroup := false, false

	for i := 1; i < len(argv); i++ {
		switch argv[i] {
		case "--DFF_Config":
			if i+1 >= len(argv) {
				return nil, &ArgumentError{Detail: "--DFF_Config requires a value"}
			}
			out.ConfigPath = argv[i+1]
			haveConfig = true
			i++
		case "--DFF_GName":
			if i+1 >= len(argv) {
				return nil, &ArgumentError{Detail: "--DFF_GName requires a value"}
			}
			out.GroupName = argv[i+1]
			haveGroup = true
			i++
		default:
			out.Rest = append(out.Rest, argv[i])
		}
	}

	if !haveConfig {
		return nil, &ArgumentError{Detail: "missing required option --DFF_Config"}
	}
	if !haveGroup {
		return nil, &ArgumentError{Detail: "missing required option --DFF_GName"}
	}

	return out, nil
}
