// Package cipher turns the rotor machine into a message cipher.
//
// # Sessions
//
// A Session is a machine assembled from Settings: a suite, the selected
// rotors and reflector from a wheels.Catalog, ring settings, notch
// overrides, plug pairs and the master key. Every session owns private
// copies of its wheels, so independent sessions can run concurrently.
//
//	s, err := cipher.NewSession(cipher.Settings{
//	    Suite:     "Legacy",
//	    Rotors:    []string{"I", "II", "III"},
//	    Reflector: "B",
//	    RingSet:   []int{1, 1, 1},
//	    MasterKey: "AAAA",
//	}, nil)
//	out, _ := s.Encipher("AAAAA") // BDZGO
//
// # Pipelines
//
// A Pipeline normalises a message to the session alphabet, frames it with a
// random marker, surrounds it with cover symbols and runs one or two
// encipher passes, the second over the reversed output of the first:
//
//	p, _ := cipher.NewPipeline(settings, nil, cipher.DefaultFlags())
//	ct, marker, _ := p.Encrypt("attack at dawn")
//	pt, _ := p.Decrypt(ct, marker) // ATTACKATDAWN
//
// Markers and cover symbols are drawn from a Source. CryptoSource is the
// default; deterministic sources are refused unless AllowDeterministic is
// passed.
//
// # Profiles
//
// A ProfileStore saves named Settings and Flags as JSON files.
package cipher
