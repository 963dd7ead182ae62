package protocol

// The handshake carries four values in this order:
//
//	initiator -> responder: Hello       (username)
//	responder -> initiator: Challenge   (salt, B, group parameters)
//	initiator -> responder: ClientProof (A, M1)
//	responder -> initiator: ServerProof (M2)
//
// Byte fields are big-endian unsigned integers without padding and are
// base64-encoded in JSON.

// Hello starts a handshake for a user.
type Hello struct {
	Username string `json:"username"`
}

// Challenge is the responder's reply to Hello.
type Challenge struct {
	SessionID       string `json:"session_id"`
	Salt            []byte `json:"salt"`
	ServerPublicKey []byte `json:"B"`
	Group           string `json:"group"`
	Hash            string `json:"hash"`
}

// ClientProof carries the initiator's public key and proof.
type ClientProof struct {
	SessionID       string `json:"session_id"`
	ClientPublicKey []byte `json:"A"`
	Proof           []byte `json:"M1"`
}

// ServerProof carries the responder's proof. It is sent only after the
// client proof has been verified.
type ServerProof struct {
	Proof []byte `json:"M2"`
}

// Validate checks that the hello names a user.
func (h *Hello) Validate() error {
	if h.Username == "" {
		return NewInvalidRequestError("missing field: username")
	}
	return nil
}

// Validate checks that every field of the challenge is present.
func (c *Challenge) Validate() error {
	switch {
	case c.SessionID == "":
		return NewInvalidRequestError("missing field: session_id")
	case len(c.Salt) == 0:
		return NewInvalidRequestError("missing field: salt")
	case len(c.ServerPublicKey) == 0:
		return NewInvalidRequestError("missing field: B")
	}
	return nil
}

// Validate checks that every field of the client proof is present.
func (p *ClientProof) Validate() error {
	switch {
	case p.SessionID == "":
		return NewInvalidRequestError("missing field: session_id")
	case len(p.ClientPublicKey) == 0:
		return NewInvalidRequestError("missing field: A")
	case len(p.Proof) == 0:
		return NewInvalidRequestError("missing field: M1")
	}
	return nil
}

// Validate checks that the server proof is present.
func (p *ServerProof) Validate() error {
	if len(p.Proof) == 0 {
		return NewInvalidRequestError("missing field: M2")
	}
	return nil
}
