package ml

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// gRPC service implemented by the model backend. Messages are
// google.protobuf.Struct so the backend needs no generated stubs.
const (
	ClassifierService = "epif.classifier.v1.Classifier"

	methodFeatureNames = "/" + ClassifierService + "/FeatureNames"
	methodPredictProba = "/" + ClassifierService + "/PredictProba"
	methodExplain      = "/" + ClassifierService + "/Explain"
	methodHealth       = "/" + ClassifierService + "/Health"
)

// GRPCMLClient implements MLClient using gRPC
type GRPCMLClient struct {
	conn     *grpc.ClientConn
	features featureNames
}

// NewGRPCMLClient creates a new ML client using gRPC. fallback is used as
// the feature order until SyncFeatureNames succeeds.
func NewGRPCMLClient(address string, fallback []string, opts ...grpc.DialOption) (*GRPCMLClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ML service: %w", err)
	}

	c := &GRPCMLClient{conn: conn}
	c.features.set(fallback)
	return c, nil
}

func (c *GRPCMLClient) FeatureNames() []string {
	return c.features.get()
}

// SyncFeatureNames fetches the feature order from the service.
func (c *GRPCMLClient) SyncFeatureNames(ctx context.Context) error {
	resp, err := c.invoke(ctx, methodFeatureNames, map[string]any{})
	if err != nil {
		return err
	}
	names, err := stringList(resp, "feature_names")
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("ML service returned no feature names")
	}
	c.features.set(names)
	return nil
}

// PredictProbabilities sends the feature row via gRPC and returns the class
// probabilities.
func (c *GRPCMLClient) PredictProbabilities(ctx context.Context, row []float64) ([]float64, error) {
	resp, err := c.invoke(ctx, methodPredictProba, c.rowRequest(row))
	if err != nil {
		return nil, err
	}
	return numberList(resp.GetFields()["probabilities"], "probabilities")
}

func (c *GRPCMLClient) Explain(ctx context.Context, row []float64) (*Explanation, error) {
	resp, err := c.invoke(ctx, methodExplain, c.rowRequest(row))
	if err != nil {
		return nil, err
	}

	names, err := stringList(resp, "feature_names")
	if err != nil {
		return nil, err
	}
	base, err := numberList(resp.GetFields()["base_values"], "base_values")
	if err != nil {
		return nil, err
	}
	var values [][]float64
	for i, v := range resp.GetFields()["values"].GetListValue().GetValues() {
		class, err := numberList(v, fmt.Sprintf("values[%d]", i))
		if err != nil {
			return nil, err
		}
		values = append(values, class)
	}
	return &Explanation{FeatureNames: names, BaseValues: base, Values: values}, nil
}

// HealthCheck performs a health check via gRPC
func (c *GRPCMLClient) HealthCheck(ctx context.Context) error {
	resp, err := c.invoke(ctx, methodHealth, map[string]any{})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if status := resp.GetFields()["status"].GetStringValue(); status != "healthy" {
		return fmt.Errorf("service unhealthy: %s", status)
	}
	return nil
}

// Close closes the gRPC connection
func (c *GRPCMLClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *GRPCMLClient) rowRequest(row []float64) map[string]any {
	names := c.FeatureNames()
	nameList := make([]any, len(names))
	for i, n := range names {
		nameList[i] = n
	}
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	return map[string]any{"feature_names": nameList, "row": values}
}

func (c *GRPCMLClient) invoke(ctx context.Context, method string, body map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(body)
	if err != nil {
		return nil, fmt.Errorf("failed to build gRPC request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, fmt.Errorf("gRPC %s call failed: %w", method, err)
	}
	return resp, nil
}

func numberList(v *structpb.Value, field string) ([]float64, error) {
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("response field %s is not a list", field)
	}
	out := make([]float64, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		n, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("response field %s[%d] is not a number", field, i)
		}
		out = append(out, n.NumberValue)
	}
	return out, nil
}

func stringList(s *structpb.Struct, field string) ([]string, error) {
	list, ok := s.GetFields()[field].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("response field %s is not a list", field)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		str, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("response field %s[%d] is not a string", field, i)
		}
		out = append(out, str.StringValue)
	}
	return out, nil
}
