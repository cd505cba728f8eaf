package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/btcgateway/business/web/errs"
	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"github.com/ardanlabs/btcgateway/foundation/validate"
)

func Test_FromError(t *testing.T) {
	type table struct {
		name   string
		err    error
		kind   errs.Kind
		status int
	}

	tt := []table{
		{name: "validation", err: validate.NewFieldError("hash", errors.New("bad")), kind: errs.Validation, status: http.StatusBadRequest},
		{name: "notfound", err: &upstream.Error{Kind: upstream.KindRejected, Code: upstream.CodeInvalidAddressOrKey}, kind: errs.NotFound, status: http.StatusNotFound},
		{name: "range", err: &upstream.Error{Kind: upstream.KindRejected, Code: upstream.CodeInvalidParameter}, kind: errs.NotFound, status: http.StatusNotFound},
		{name: "warmup", err: &upstream.Error{Kind: upstream.KindRejected, Code: upstream.CodeInWarmup}, kind: errs.UpstreamUnavailable, status: http.StatusServiceUnavailable},
		{name: "rejected", err: &upstream.Error{Kind: upstream.KindRejected, Code: upstream.CodeMisc}, kind: errs.UpstreamRejected, status: http.StatusBadGateway},
		{name: "auth", err: &upstream.Error{Kind: upstream.KindAuth}, kind: errs.UpstreamAuth, status: http.StatusBadGateway},
		{name: "timeout", err: &upstream.Error{Kind: upstream.KindTimeout}, kind: errs.UpstreamTimeout, status: http.StatusGatewayTimeout},
		{name: "transport", err: &upstream.Error{Kind: upstream.KindTransport}, kind: errs.UpstreamTransport, status: http.StatusBadGateway},
		{name: "wrapped", err: fmt.Errorf("block: %w", &upstream.Error{Kind: upstream.KindTimeout}), kind: errs.UpstreamTimeout, status: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("boom"), kind: errs.Internal, status: http.StatusInternalServerError},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			te := errs.FromError(tst.err)

			if te.Kind != tst.kind {
				t.Logf("Test %s:\tgot: %s", tst.name, te.Kind)
				t.Logf("Test %s:\texp: %s", tst.name, tst.kind)
				t.Fatalf("Test %s:\tShould get back the right kind.", tst.name)
			}

			if te.Status != tst.status {
				t.Logf("Test %s:\tgot: %d", tst.name, te.Status)
				t.Logf("Test %s:\texp: %d", tst.name, tst.status)
				t.Fatalf("Test %s:\tShould get back the right status.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_FieldsInResponse(t *testing.T) {
	err := validate.NewFieldError("txid", errors.New("txid must be 64 hexadecimal characters"))

	resp := errs.FromError(err).Response()
	if resp.Fields["txid"] == "" {
		t.Logf("got: %v", resp.Fields)
		t.Fatalf("Should name the offending parameter.")
	}

	if resp.Error.Kind != errs.Validation {
		t.Fatalf("Should get back a validation kind, got %s", resp.Error.Kind)
	}
}

func Test_UpstreamMessage(t *testing.T) {
	ue := upstream.Error{Kind: upstream.KindTransport, Method: "getblock", Message: "dial tcp 10.0.0.5:8332: connection refused"}

	resp := errs.FromError(&ue).Response()
	if resp.Error.Message != "node unreachable" {
		t.Logf("got: %s", resp.Error.Message)
		t.Fatalf("Should not expose transport details to the client.")
	}
}
