package governor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

// Handle is the job handler for structs.KindGovernedFunction jobs. The function's result is
// recorded in the job's status info.
func (g *Governor) Handle(ctx context.Context, meta *queue.Meta) error {
	run := &structs.FunctionRun{}
	err := meta.Decode(run)
	if err != nil {
		return err
	}

	result, err := g.Run(ctx, run)
	if err != nil {
		return err
	}

	return meta.AppendInfo(ctx, describe(run, result))
}

func describe(run *structs.FunctionRun, result *structs.FunctionResult) string {
	if result == nil {
		return fmt.Sprintf("%s returned nothing", run.DeveloperName)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%s returned a %s result", run.DeveloperName, result.Type)
	}
	return fmt.Sprintf("%s returned %s", run.DeveloperName, string(data))
}
