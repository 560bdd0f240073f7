package metadata

import (
	"encoding/xml"
	"fmt"

	"github.com/metagate/metagate/domain/object"
)

// xmlns is the metadata API namespace stamped on every document root.
const xmlns = "http://soap.sforce.com/2006/04/metadata"

// nameFieldDisplayFormat renders the auto-number identifier, e.g. 00000042.
const nameFieldDisplayFormat = "{00000000}"

// objectDescriptor is the object-level document. Element order follows the
// struct layout and is part of the deterministic output contract.
type objectDescriptor struct {
	XMLName            xml.Name  `xml:"CustomObject"`
	Xmlns              string    `xml:"xmlns,attr"`
	Label              string    `xml:"label"`
	PluralLabel        string    `xml:"pluralLabel"`
	NameField          nameField `xml:"nameField"`
	DeploymentStatus   string    `xml:"deploymentStatus"`
	SharingModel       string    `xml:"sharingModel"`
	EnableBulkApi      bool      `xml:"enableBulkApi"`
	EnableHistory      bool      `xml:"enableHistory"`
	EnableReports      bool      `xml:"enableReports"`
	EnableSearch       bool      `xml:"enableSearch"`
	EnableSharing      bool      `xml:"enableSharing"`
	EnableStreamingApi bool      `xml:"enableStreamingApi"`
}

// nameField is the record identifier every object must declare.
type nameField struct {
	Label         string `xml:"label"`
	Type          string `xml:"type"`
	DisplayFormat string `xml:"displayFormat"`
}

// fieldsDescriptor bundles the per-field fragments into one document.
type fieldsDescriptor struct {
	XMLName xml.Name          `xml:"CustomObject"`
	Xmlns   string            `xml:"xmlns,attr"`
	Fields  []fieldDescriptor `xml:"fields"`
}

// fieldDescriptor is one field fragment. Pointer fields distinguish "absent"
// from explicit zero values: required=false and scale=0 must appear in the
// output for the types that set them.
type fieldDescriptor struct {
	FullName     string    `xml:"fullName"`
	Label        string    `xml:"label"`
	Type         string    `xml:"type"`
	Length       int       `xml:"length,omitempty"`
	VisibleLines int       `xml:"visibleLines,omitempty"`
	Precision    int       `xml:"precision,omitempty"`
	Scale        *int      `xml:"scale,omitempty"`
	Required     *bool     `xml:"required,omitempty"`
	DefaultValue *bool     `xml:"defaultValue,omitempty"`
	ValueSet     *valueSet `xml:"valueSet,omitempty"`
}

// valueSet restricts a picklist to an enumerated set of values.
type valueSet struct {
	Restricted bool               `xml:"restricted"`
	Definition valueSetDefinition `xml:"valueSetDefinition"`
}

type valueSetDefinition struct {
	Sorted bool            `xml:"sorted"`
	Values []picklistValue `xml:"value"`
}

type picklistValue struct {
	FullName string `xml:"fullName"`
	Default  bool   `xml:"default"`
	Label    string `xml:"label"`
}

// manifest lists the members a deployment call should apply.
type manifest struct {
	XMLName xml.Name       `xml:"Package"`
	Xmlns   string         `xml:"xmlns,attr"`
	Types   []manifestType `xml:"types"`
	Version string         `xml:"version"`
}

type manifestType struct {
	Members []string `xml:"members"`
	Name    string   `xml:"name"`
}

func renderObject(name string) []byte {
	return render(objectDescriptor{
		Xmlns:       xmlns,
		Label:       name,
		PluralLabel: name + "s",
		NameField: nameField{
			Label:         name + " Number",
			Type:          "AutoNumber",
			DisplayFormat: nameFieldDisplayFormat,
		},
		DeploymentStatus:   "Deployed",
		SharingModel:       "ReadWrite",
		EnableBulkApi:      true,
		EnableHistory:      false,
		EnableReports:      true,
		EnableSearch:       true,
		EnableSharing:      true,
		EnableStreamingApi: true,
	})
}

func renderFields(fields []object.Field) []byte {
	doc := fieldsDescriptor{Xmlns: xmlns}
	for _, f := range fields {
		doc.Fields = append(doc.Fields, buildField(f))
	}
	return render(doc)
}

func renderManifest(apiName string) []byte {
	return render(manifest{
		Xmlns: xmlns,
		Types: []manifestType{
			{Members: []string{apiName}, Name: "CustomObject"},
		},
		Version: APIVersion,
	})
}

// render marshals a document with the standard XML header and four-space
// indentation. Marshaling these fixed struct shapes cannot fail; an error
// here means the structs themselves are broken.
func render(doc any) []byte {
	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		panic(fmt.Sprintf("metadata: marshal descriptor: %v", err))
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out
}
