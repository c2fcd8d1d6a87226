package simulator

import (
	"context"

	"github.com/edp1096/opspice/pkg/report"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// Request asks for one quantity of one netlist. Target is a node name or a
// component query such as "R1 voltage drop" or "R1 current".
type Request struct {
	ID        string `json:"id,omitempty"`
	Netlist   string `json:"netlist"`
	Target    string `json:"target"`
	Precision *int   `json:"precision,omitempty"`
}

// Response carries either an answer or an error, never both.
type Response struct {
	ID    string         `json:"id,omitempty"`
	Value *float64       `json:"value,omitempty"`
	Unit  string         `json:"unit,omitempty"`
	Text  string         `json:"text,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Kind    spiceerr.Kind `json:"kind"`
	Message string        `json:"message"`
	Line    int           `json:"line,omitempty"`
}

// Answer solves text and resolves target against the solution.
func (s *Simulator) Answer(ctx context.Context, text, target string) (report.Answer, error) {
	sol, err := s.Solve(ctx, text)
	if err != nil {
		return report.Answer{}, err
	}
	return report.Resolve(sol, target)
}

// Query serves one Request. Failures are reported in the Response.
func (s *Simulator) Query(ctx context.Context, req Request) Response {
	answer, err := s.Answer(ctx, req.Netlist, req.Target)
	if err != nil {
		return ErrorFor(req.ID, err)
	}

	precision := s.precision
	if req.Precision != nil {
		precision = *req.Precision
	}

	value := answer.Value
	return Response{
		ID:    req.ID,
		Value: &value,
		Unit:  answer.Unit,
		Text:  answer.Sentence(precision),
	}
}

// ErrorFor converts err into an error Response.
func ErrorFor(id string, err error) Response {
	return Response{
		ID: id,
		Error: &ErrorResponse{
			Kind:    spiceerr.KindOf(err),
			Message: err.Error(),
			Line:    spiceerr.LineOf(err),
		},
	}
}
