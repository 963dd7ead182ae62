// Package srp implements SRP-6a (Secure Remote Password) as described in
// RFC 5054 and the Stanford SRP design note.
//
// The package is layered:
//
//   - Engine holds one group (N, g), the hash capability and the derived
//     multiplier k, and computes every SRP quantity as a pure function.
//   - Coordinator wraps an Engine with a random source and derives
//     ephemeral key pairs and complete sessions, applying the abort checks
//     on degenerate public keys and scrambling parameters.
//   - Client and Server are the per-attempt state machines for the
//     initiator and the responder.
//
// An Engine is immutable and may be shared by any number of goroutines.
// Client and Server values hold single-session state and must not be used
// concurrently.
//
// Usage:
//
//	engine, _ := srp.NewPresetEngine(srp.PresetDefault)
//	coord := srp.NewCoordinator(engine)
//	salt, _ := coord.GenerateSalt(srp.DefaultSaltLength)
//	verifier := coord.ComputeVerifier("alice", "password123", salt)
//
//	client := srp.NewClient(engine)
//	server := srp.NewServer(engine)
//	_ = client.SetCredentials("alice", "password123", salt)
//	_ = server.SetCredentials("alice", verifier, salt)
//
//	A, _ := client.PublicKey()
//	B, _ := server.PublicKey()
//	ok, _ := server.SetClientKey(A)
//	ok, _ = client.SetServerKey(B)
//	M1, _ := client.Proof()
//	ok, _ = server.ValidateProof(M1)
//	M2, _ := server.Proof()
//	ok, _ = client.ValidateProof(M2)
package srp
