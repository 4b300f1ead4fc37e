package filter

import (
	"strconv"

	"github.com/hupe1980/pvfilter/internal/xmltree"
)

const outputDataSetTypeDoc = "The value of this property determines the dataset type for the output of the programmable filter."

// XML renders the ServerManagerConfiguration document. The output depends
// only on the definition, so repeated calls return identical bytes.
func (d *Definition) XML() []byte {
	return d.Element().Bytes()
}

// Element builds the document tree.
func (d *Definition) Element() *xmltree.Element {
	groupName := "filters"
	if d.numberOfInputs == 0 {
		groupName = "sources"
	}

	proxy := xmltree.New("SourceProxy",
		"name", d.name,
		"class", ProgrammableFilterClass,
		"label", d.Label(),
	)

	proxy.Append(xmltree.New("Documentation",
		"long_help", d.longHelp,
		"short_help", d.ShortHelp(),
	))

	if d.numberOfInputs >= 1 {
		proxy.Append(d.inputProperty())
	}

	for _, f := range d.fields {
		proxy.Append(f.Property.Element(f.Name))
	}

	code, _ := OutputDataSetType(d.outputDataType)

	proxy.Append(
		xmltree.New("IntVectorProperty",
			"command", "SetOutputDataSetType",
			"default_values", strconv.Itoa(code),
			"name", OutputDataSetTypeName,
			"number_of_elements", "1",
			"panel_visibility", "never",
		).Append(xmltree.New("Documentation").WithText(outputDataSetTypeDoc)),
		d.scriptProperty(ScriptPropertyName, "", "SetScript", d.scripts.RequestData),
		d.scriptProperty(InformationScriptName, "RequestInformationScript", "SetInformationScript", d.scripts.RequestInformation),
		d.scriptProperty(UpdateExtentScriptName, "RequestUpdateExtentScript", "SetUpdateExtentScript", d.scripts.RequestUpdateExtent),
	)

	return xmltree.New("ServerManagerConfiguration").Append(
		xmltree.New("ProxyGroup", "name", groupName).Append(proxy),
	)
}

func (d *Definition) inputProperty() *xmltree.Element {
	input := xmltree.New("InputProperty", "name", InputPropertyName)

	if d.numberOfInputs > 1 {
		input.Set("clean_command", "RemoveAllInputs")
		input.Set("command", "AddInputConnection")
		input.Set("multiple_input", "1")
	} else {
		input.Set("command", "SetInputConnection")
	}

	dataTypes := xmltree.New("DataTypeDomain", "name", "input_type")
	for _, t := range d.inputDataTypes {
		dataTypes.Append(xmltree.New("DataType", "value", t))
	}

	return input.Append(
		xmltree.New("ProxyGroupDomain", "name", "groups").Append(
			xmltree.New("Group", "name", "sources"),
			xmltree.New("Group", "name", "filters"),
		),
		dataTypes,
	)
}

func (d *Definition) scriptProperty(name, label, command, script string) *xmltree.Element {
	visibility := "advanced"
	if d.scriptInvisible {
		visibility = "never"
	}

	el := xmltree.New("StringVectorProperty", "name", name)
	if label != "" {
		el.Set("label", label)
	}

	el.Set("command", command)
	el.Set("number_of_elements", "1")
	el.Set("default_values", script)
	el.Set("panel_visibility", visibility)

	return el.Append(xmltree.New("Hints").Append(xmltree.New("Widget", "type", "multi_line")))
}
