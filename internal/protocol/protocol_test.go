package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdBuild, &BuildRequest{Context: "/src", Tag: "ragbuilder:1.0.0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"build","payload":{"context":"/src","tag":"ragbuilder:1.0.0"}}`, string(data))

	env, payload, err := Decode(append(data, '\n'))
	require.NoError(t, err)
	assert.Equal(t, CmdBuild, env.Command)

	req, err := DecodePayload[BuildRequest](payload)
	require.NoError(t, err)
	assert.Equal(t, "/src", req.Context)
	assert.Equal(t, "ragbuilder:1.0.0", req.Tag)
}

func TestEncodeWithoutPayload(t *testing.T) {
	data, err := Encode(CmdStatus, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"command":"status"}`, string(data))
}

func TestDecodeErrors(t *testing.T) {
	for _, line := range []string{"", "  \n", "{", `{"payload":{}}`} {
		_, _, err := Decode([]byte(line))
		assert.ErrorIs(t, err, ErrProtocol, "line %q", line)
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	_, err := DecodePayload[BuildRequest](nil)
	assert.ErrorIs(t, err, ErrProtocol)

	_, err = DecodePayload[BuildRequest]([]byte(`{"context":"/src","recipes":"x"}`))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestErrorResult(t *testing.T) {
	assert.Equal(t, "boom", (&ErrorResult{Message: "boom"}).Error())
	assert.Equal(t, "boom (stage package)", (&ErrorResult{Message: "boom", Stage: "package"}).Error())
}
