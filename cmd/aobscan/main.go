// Command aobscan resolves AOB signatures inside modules loaded in its own process.
//
//	aobscan -module libc.so.6 -aob "48 8B 05 ? ? ? ? 48 85 C0" -mode relative -offset 3 -extra 7
//	aobscan -config signatures.toml
package main

import (
	"flag"
	"fmt"
	"os"

	"sigscan/config"
	"sigscan/hexdump"
	"sigscan/memory"
	"sigscan/module"
	"sigscan/pattern"
)

func main() {
	configFlag := flag.String("config", "", "TOML config with scanner settings and signatures")
	moduleFlag := flag.String("module", "", "Module to scan, empty for the main executable")
	aobFlag := flag.String("aob", "", "Array of bytes to scan for (e.g., '48 8B ? ? 89 05')")
	offsetFlag := flag.Int("offset", 0, "Displacement from the match to the stored address")
	extraFlag := flag.Uint64("extra", 0, "Constant added to the resolved offset (instruction length in relative mode)")
	modeFlag := flag.String("mode", config.ModeDeref, "Resolution mode: deref, relative or match")
	allFlag := flag.Bool("all", false, "List every match instead of resolving the first")
	maxdopFlag := flag.Uint("maxdop", 0, "Maximum scan parallelism, overrides the config")
	contextFlag := flag.Int("context", -1, "Bytes of hexdump context around matches, overrides the config")
	noColorFlag := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		cfg, err = config.Load(*configFlag)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *aobFlag != "" {
		cfg.Signatures = append(cfg.Signatures, config.Signature{
			Name:    "cli",
			Module:  *moduleFlag,
			Pattern: *aobFlag,
			Offset:  *offsetFlag,
			Extra:   *extraFlag,
			Mode:    *modeFlag,
		})
	}

	if *maxdopFlag > 0 {
		cfg.Scanner.MaxDOP = *maxdopFlag
	}
	if *contextFlag >= 0 {
		cfg.Output.Context = uint(*contextFlag)
	}
	if *noColorFlag {
		cfg.Output.Color = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(cfg.Signatures) == 0 {
		fmt.Println("Error: --aob or a config with signatures is required")
		flag.Usage()
		os.Exit(1)
	}

	failed := 0
	modules := make(map[string]*module.Module)

	for _, sig := range cfg.Signatures {
		m, ok := modules[sig.Module]
		if !ok {
			var err error
			m, err = module.FromName(sig.Module, cfg.ModuleOptions()...)
			if err != nil {
				fmt.Printf("%s: %v\n", sig.Name, err)
				failed++
				continue
			}
			modules[sig.Module] = m
		}

		if *allFlag {
			if err := listMatches(m, sig, cfg.Output); err != nil {
				fmt.Printf("%s: %v\n", sig.Name, err)
				failed++
			}
			continue
		}

		resolved, match, found, err := resolve(m, sig)
		switch {
		case err != nil:
			fmt.Printf("%s: %v\n", sig.Name, err)
			failed++
		case !found:
			fmt.Printf("%s: pattern not found in %s\n", sig.Name, m)
			failed++
		default:
			fmt.Printf("%s: 0x%X (match at %s, %s+0x%X)\n", sig.Name, resolved, match.ToString(), m.Name(), m.Relative(match))
			dumpContext(m, sig, match, cfg.Output)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// resolve applies the signature's mode and also returns the raw match address
func resolve(m *module.Module, sig config.Signature) (uint64, memory.Address, bool, error) {
	match, found, err := m.FindPattern(sig.Pattern)
	if err != nil || !found {
		return 0, 0, found, err
	}

	var resolved uint64
	switch sig.Mode {
	case config.ModeRelative:
		resolved, err = m.ResolveRelativeAt(match, sig.Offset, int(sig.Extra))
	case config.ModeMatch:
		resolved = m.Relative(match) + sig.Extra
	default:
		resolved, err = m.Resolve(match, sig.Offset, sig.Extra)
	}
	if err != nil {
		return 0, match, false, err
	}

	return resolved, match, true, nil
}

func listMatches(m *module.Module, sig config.Signature, output config.Output) error {
	matches, err := m.FindAll(sig.Pattern)
	if err != nil {
		return err
	}

	fmt.Printf("%s: found %d matches in %s\n", sig.Name, len(matches), m)
	for _, match := range matches {
		fmt.Printf("Match at %s (%s+0x%X)\n", match.ToString(), m.Name(), m.Relative(match))
		dumpContext(m, sig, match, output)
	}
	return nil
}

// dumpContext prints the bytes around a match, clipped to the image
func dumpContext(m *module.Module, sig config.Signature, match memory.Address, output config.Output) {
	if output.Context == 0 {
		return
	}

	p, err := pattern.Parse(sig.Pattern)
	if err != nil {
		return
	}

	image := m.Region()
	ctx := memory.Address(output.Context)

	start := image.Base
	if match-image.Base > ctx {
		start = match - ctx
	}
	end := min(match+memory.Address(len(p))+ctx, image.End())

	data, err := m.ReadMemory(start, memory.Size(end-start))
	if err != nil {
		fmt.Printf("Failed to read context at %s: %v\n", start.ToString(), err)
		return
	}

	fmt.Print(hexdump.DumpMatch(data, uint64(start), int(match-start), len(p), output.Color))
}
