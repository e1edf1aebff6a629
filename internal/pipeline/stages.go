package pipeline

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
	"git.home.luguber.info/inful/housing-dpe/internal/estimate"
	"git.home.luguber.info/inful/housing-dpe/internal/outputs"
	"git.home.luguber.info/inful/housing-dpe/internal/schema"
)

// PrepareOutputCommand creates the output directory tree.
type PrepareOutputCommand struct {
	BaseCommand
}

func NewPrepareOutputCommand() *PrepareOutputCommand {
	return &PrepareOutputCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:        StagePrepareOutput,
			Description: "Create the output directory tree",
		}),
	}
}

func (c *PrepareOutputCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	if rs.Writer == nil {
		return ExecutionFailure(errors.New("output writer not set"))
	}
	if err := rs.Writer.Prepare(); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// GenerateDataCommand produces the synthetic panel frame.
type GenerateDataCommand struct {
	BaseCommand
}

func NewGenerateDataCommand() *GenerateDataCommand {
	return &GenerateDataCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:        StageGenerateData,
			Description: "Generate the synthetic panel dataset",
			SkipIf: func(rs *RunState) bool {
				// A pre-seeded frame (tests, replays) short-circuits generation.
				return rs.Frame != nil
			},
		}),
	}
}

func (c *GenerateDataCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	if c.ShouldSkip(rs) {
		return ExecutionSkipped()
	}
	rs.Frame = dataset.Generate(rs.Config.NRows, rs.Config.Seed)
	return ExecutionSuccess()
}

// ValidateDataCommand checks the frame against the panel schema.
type ValidateDataCommand struct {
	BaseCommand
}

func NewValidateDataCommand() *ValidateDataCommand {
	return &ValidateDataCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:         StageValidateData,
			Description:  "Validate the panel dataset against the schema",
			Dependencies: []StageName{StageGenerateData},
		}),
	}
}

func (c *ValidateDataCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	if rs.Frame == nil {
		return ExecutionFailure(errors.New("no frame to validate"))
	}
	if err := schema.Validate(rs.Frame); err != nil {
		return ExecutionFailure(apperrors.WrapError(err, apperrors.CategoryData, "panel validation failed"))
	}
	return ExecutionSuccess()
}

// EstimateModelCommand fits the configured model on the validated frame.
type EstimateModelCommand struct {
	BaseCommand
}

func NewEstimateModelCommand() *EstimateModelCommand {
	return &EstimateModelCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:         StageEstimateModel,
			Description:  "Estimate the evaluation model",
			Dependencies: []StageName{StageValidateData},
		}),
	}
}

func (c *EstimateModelCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	formula, err := estimate.ParseFormula(rs.Config.Model.Formula)
	if err != nil {
		return ExecutionFailure(err)
	}
	result, err := estimate.Fit(rs.Frame, formula, rs.Config.Model.CovType)
	if err != nil {
		return ExecutionFailure(err)
	}
	rs.Result = result
	return ExecutionSuccess()
}

// WriteOutputsCommand renders data, tables, figure, and run metadata.
type WriteOutputsCommand struct {
	BaseCommand
}

func NewWriteOutputsCommand() *WriteOutputsCommand {
	return &WriteOutputsCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:         StageWriteOutputs,
			Description:  "Write output artifacts (data, tables, figure, metadata)",
			Dependencies: []StageName{StagePrepareOutput, StageEstimateModel},
		}),
	}
}

func (c *WriteOutputsCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	rs.Metadata = outputs.CollectMetadata(rs.RunID, rs.ConfigPath, rs.Frame.Len())

	if err := rs.Writer.WriteData(rs.Frame); err != nil {
		return ExecutionFailure(err)
	}
	if err := rs.Writer.WriteRegressionTable(rs.Result); err != nil {
		return ExecutionFailure(err)
	}
	if err := rs.Writer.WriteFigure(rs.Result); err != nil {
		return ExecutionFailure(err)
	}
	if err := rs.Writer.WriteMetadata(rs.Metadata); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// RenderReportCommand writes the markdown and HTML run report.
type RenderReportCommand struct {
	BaseCommand
}

func NewRenderReportCommand() *RenderReportCommand {
	return &RenderReportCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{
			Name:         StageRenderReport,
			Description:  "Render the run report (markdown + HTML)",
			Dependencies: []StageName{StageWriteOutputs},
		}),
	}
}

func (c *RenderReportCommand) Execute(_ context.Context, rs *RunState) StageExecution {
	if err := rs.Writer.WriteReport(rs.Metadata, rs.Result); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// DefaultRegistry returns a registry with every pipeline stage registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cmd := range []StageCommand{
		NewPrepareOutputCommand(),
		NewGenerateDataCommand(),
		NewValidateDataCommand(),
		NewEstimateModelCommand(),
		NewWriteOutputsCommand(),
		NewRenderReportCommand(),
	} {
		// Registration of the built-in set cannot collide.
		_ = r.Register(cmd)
	}
	return r
}
