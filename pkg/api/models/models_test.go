package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestObjectOptionalID(t *testing.T) {
	t.Parallel()

	var req RequestObject
	err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"mounts"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, MethodMounts, req.Method)
	assert.Nil(t, req.ID, "request without id is a notification")

	id := uuid.New()
	err = json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":"`+id.String()+`","method":"mounts.mount"}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.ID)
	assert.Equal(t, id, *req.ID)
}

func TestRequestObjectRawParams(t *testing.T) {
	t.Parallel()

	var req RequestObject
	err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"mounts.unmount","params":{"mountPoint":"/Volumes/media"}}`), &req)
	require.NoError(t, err)

	// params stay raw so each handler can decode its own type
	var params UnmountParams
	require.NoError(t, json.Unmarshal(req.Params, &params))
	assert.Equal(t, "/Volumes/media", params.MountPoint)
}

func TestResponseObjectKeepsNullResult(t *testing.T) {
	t.Parallel()

	resp := ResponseObject{
		JSONRPC: "2.0",
		ID:      uuid.New(),
		Result:  nil,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":null`,
		"successful responses always carry a result field")
	assert.NotContains(t, string(data), `"error"`)
}

func TestResponseErrorObjectOmitsResult(t *testing.T) {
	t.Parallel()

	resp := ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      uuid.New(),
		Error:   &ErrorObject{Code: -32601, Message: "Method not found"},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"result"`)
	assert.Contains(t, string(data), `"code":-32601`)
}
