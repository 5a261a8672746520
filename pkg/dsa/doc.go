// Package dsa implements the Digital Signature Algorithm: domain
// parameter generation under FIPS 186-2 and FIPS 186-4, key pair
// derivation, and signing/verification over messages or pre-computed
// digests.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/go-dsa/pkg/dsa"
//
//	engine := dsa.New().WithStandard(dsa.FIPS186v4)
//
//	key, info, err := engine.KeyGen(ctx, dsa.GenConfig{Size: 2048})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("accepted p at counter %d with seed %x\n", info.Counter, info.Seed)
//
//	sig, err := engine.Sign(key, []byte("a message"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ok, err := engine.Verify(key.Public(), sig, []byte("a message"))
//
// # Standards
//
// The legacy FIPS 186-2 regimen (the default) builds 160-bit subgroups
// with SHA-1; FIPS 186-4 uses the SHA-2 family and defaults to 256-bit
// subgroups for moduli of 2048 bits and up. Standard strings from
// configuration files can be mapped with [ParseStandard]: anything
// matching "186-3" or "186-4" selects the modern regimen.
//
// # Progress and cancellation
//
// Parameter generation can run for a long time, especially with
// provable primes. The context passed to KeyGen is checked once per
// search iteration, and an optional hook observes progress:
//
//	engine := dsa.New().WithProgress(func(phase string, i int) error {
//	    fmt.Fprint(os.Stderr, ".")
//	    return nil // return an error to stop the run
//	})
//
// # Custom primality oracles
//
// The generator consults a [PrimalityOracle] for all primality
// decisions. The default binding lives in pkg/primality; substitute
// your own with WithPrimality:
//
//	engine := dsa.New().WithPrimality(myOracle)
//
// # External key material
//
// Key fields are plain exported integers so envelope codecs can read
// and populate them. Keys built from external integers must be
// re-validated with [Key.Validate] before use.
package dsa
