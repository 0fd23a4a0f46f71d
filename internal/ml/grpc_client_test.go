package ml

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type structServer interface {
	handle(method string, req *structpb.Struct) (*structpb.Struct, error)
}

type fakeClassifier struct {
	responses map[string]map[string]any
	requests  map[string]*structpb.Struct
}

func (f *fakeClassifier) handle(method string, req *structpb.Struct) (*structpb.Struct, error) {
	f.requests[method] = req
	body, ok := f.responses[method]
	if !ok {
		return nil, status.Error(codes.Unimplemented, method)
	}
	return structpb.NewStruct(body)
}

func unaryMethod(name string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			in := &structpb.Struct{}
			if err := dec(in); err != nil {
				return nil, err
			}
			return srv.(structServer).handle(name, in)
		},
	}
}

var classifierServiceDesc = grpc.ServiceDesc{
	ServiceName: ClassifierService,
	HandlerType: (*structServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("FeatureNames"),
		unaryMethod("PredictProba"),
		unaryMethod("Explain"),
		unaryMethod("Health"),
	},
	Metadata: "epif/classifier/v1/classifier.proto",
}

func startFakeClassifier(t *testing.T, responses map[string]map[string]any) (*GRPCMLClient, *fakeClassifier) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	fake := &fakeClassifier{responses: responses, requests: map[string]*structpb.Struct{}}
	srv.RegisterService(&classifierServiceDesc, fake)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := NewGRPCMLClient("passthrough:///bufnet", []string{"Age", "TUG_Score"},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, fake
}

func TestGRPCMLClient(t *testing.T) {
	client, fake := startFakeClassifier(t, map[string]map[string]any{
		"FeatureNames": {"feature_names": []any{"Age", "TUG_Score", "has_Vertigo"}},
		"PredictProba": {"probabilities": []any{0.2, 0.3, 0.5}},
		"Explain": {
			"feature_names": []any{"Age", "TUG_Score", "has_Vertigo"},
			"base_values":   []any{0.1, 0.2, 0.3},
			"values":        []any{[]any{0.1, 0.2, 0.3}, []any{0.0, 0.0, 0.0}, []any{-0.1, -0.2, -0.3}},
		},
		"Health": {"status": "healthy"},
	})
	ctx := context.Background()

	require.NoError(t, client.SyncFeatureNames(ctx))
	assert.Equal(t, []string{"Age", "TUG_Score", "has_Vertigo"}, client.FeatureNames())

	probs, err := client.PredictProbabilities(ctx, []float64{70, 9, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.3, 0.5}, probs)

	sent := fake.requests["PredictProba"].GetFields()["row"].GetListValue().GetValues()
	require.Len(t, sent, 3)
	assert.Equal(t, 9.0, sent[1].GetNumberValue())

	exp, err := client.Explain(ctx, []float64{70, 9, 1})
	require.NoError(t, err)
	assert.NoError(t, exp.Check(3, 3))
	assert.Equal(t, []float64{-0.1, -0.2, -0.3}, exp.Values[2])

	assert.NoError(t, client.HealthCheck(ctx))
}

func TestGRPCMLClientMalformedResponse(t *testing.T) {
	client, _ := startFakeClassifier(t, map[string]map[string]any{
		"PredictProba": {"probabilities": []any{"high", 0.3}},
		"Health":       {"status": "starting"},
	})
	ctx := context.Background()

	_, err := client.PredictProbabilities(ctx, []float64{70, 9})
	assert.ErrorContains(t, err, "is not a number")

	assert.ErrorContains(t, client.HealthCheck(ctx), "service unhealthy: starting")

	err = client.SyncFeatureNames(ctx)
	assert.ErrorContains(t, err, "Unimplemented")
	assert.Equal(t, []string{"Age", "TUG_Score"}, client.FeatureNames())
}
