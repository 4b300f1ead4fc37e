package pvfilter

import (
	"github.com/hupe1980/pvfilter/internal/definition"
	"github.com/hupe1980/pvfilter/internal/filter"
	"github.com/hupe1980/pvfilter/internal/property"
)

// Filter definitions.
type (
	// Definition is a finalized filter definition.
	Definition = filter.Definition

	// FilterOption configures a Definition.
	FilterOption = filter.Option

	// Field is a named parameter.
	Field = filter.Field

	// Scripts holds the three pipeline scripts.
	Scripts = filter.Scripts
)

// Field descriptors.
type (
	// Property is a field descriptor.
	Property = property.Property

	// PropertyOption configures a field descriptor.
	PropertyOption = property.Option

	// Enum is an ordered enumeration for IntegerEnum fields.
	Enum = property.Enum

	// Member is one enumeration member.
	Member = property.Member
)

// Errors.
type (
	// ConfigError reports an invalid definition. It names the offending
	// field, if any.
	ConfigError = property.ConfigError

	// SyntaxError reports a definition file that could not be decoded.
	SyntaxError = definition.SyntaxError
)

var (
	NewFilter           = filter.New
	WithLabel           = filter.WithLabel
	WithLongHelp        = filter.WithLongHelp
	WithShortHelp       = filter.WithShortHelp
	WithInputDataTypes  = filter.WithInputDataTypes
	WithOutputDataType  = filter.WithOutputDataType
	WithNumberOfInputs  = filter.WithNumberOfInputs
	WithScriptInvisible = filter.WithScriptInvisible
	WithScripts         = filter.WithScripts
	WithRequestData     = filter.WithRequestData
	WithField           = filter.WithField
	WithFields          = filter.WithFields
	OutputDataTypes     = filter.OutputDataTypes
	OutputDataSetType   = filter.OutputDataSetType
)

var (
	NewString      = property.NewString
	NewBoolean     = property.NewBoolean
	NewInteger     = property.NewInteger
	NewDouble      = property.NewDouble
	NewIntegerEnum = property.NewIntegerEnum
	NewEnum        = property.NewEnum
	WithHelp       = property.WithHelp
	WithDefault    = property.WithDefault
	WithElements   = property.WithElements
	WithSlider     = property.WithSlider
)
