package tracker

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
)

// filterEnv is the record view a configured filter expression evaluates
// against, eg. `Product == "Freight" && DeltaMinutes > 2`.
type filterEnv struct {
	TrainIdent      string
	Operator        string
	Product         string
	Destination     string
	Location        string
	DeltaMinutes    int
	HasScheduleInfo bool
}

func compileFilterExpression(source string) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
}

func runFilterExpression(program *vm.Program, record trainstate.Record) bool {
	output, err := expr.Run(program, filterEnv{
		TrainIdent:      record.TrainIdent,
		Operator:        record.Operator,
		Product:         record.Product,
		Destination:     record.Destination,
		Location:        record.Location,
		DeltaMinutes:    record.DeltaMinutes,
		HasScheduleInfo: record.HasScheduleInfo,
	})
	if err != nil {
		// A broken expression never hides trains
		log.Debug().Err(err).Str("train", record.TrainIdent).Msg("Filter expression failed")
		return true
	}

	keep, ok := output.(bool)
	return !ok || keep
}
