package protocol_test

import (
	"testing"

	"vyshim/internal/protocol"
)

func TestEncodeWireFormat(t *testing.T) {
	cases := []struct {
		env  protocol.Envelope
		want string
	}{
		{protocol.InitEnvelope(), `{"type":"init"}`},
		{protocol.NodeEnvelope("/opt/vyatta/.../interface.pyeth0"), `{"type":"node","data":"/opt/vyatta/.../interface.pyeth0"}`},
		{protocol.NodeEnvelope(""), `{"type":"node","data":""}`},
		{protocol.NodeEnvelope("a<b>&c"), `{"type":"node","data":"a<b>&c"}`},
	}
	for _, tc := range cases {
		got, err := protocol.Encode(tc.env)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", tc.env, err)
		}
		if string(got) != tc.want {
			t.Fatalf("Encode(%+v) = %s, want %s", tc.env, got, tc.want)
		}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	envelopes := []protocol.Envelope{
		protocol.InitEnvelope(),
		protocol.NodeEnvelope(""),
		protocol.NodeEnvelope(`/opt/x.py"quoted"\slash`),
		protocol.NodeEnvelope("/opt/vyatta/sbin/vyos-interface.pyeth0 vif 10"),
	}
	for _, env := range envelopes {
		data, err := protocol.Encode(env)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := protocol.Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v", data, err)
		}
		if got != env {
			t.Fatalf("round trip changed envelope: got %+v want %+v", got, env)
		}
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	if _, err := protocol.Encode(protocol.Envelope{Type: "commit"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	inputs := []string{
		`{"type":"commit"}`,
		`{"data":"x"}`,
		`{"type":"node"}`,
		`{"type":"init","data":"x"}`,
		`not json`,
	}
	for _, in := range inputs {
		if _, err := protocol.Decode([]byte(in)); err == nil {
			t.Fatalf("expected error decoding %s", in)
		}
	}
}
