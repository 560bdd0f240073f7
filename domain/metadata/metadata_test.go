package metadata_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/metagate/metagate/domain/metadata"
	"github.com/metagate/metagate/domain/object"
)

func findFile(t *testing.T, b metadata.Bundle, path string) []byte {
	t.Helper()
	for _, f := range b.Files {
		if f.Path == path {
			return f.Body
		}
	}
	t.Fatalf("bundle missing file %q, have %v", path, filePaths(b))
	return nil
}

func filePaths(b metadata.Bundle) []string {
	paths := make([]string, len(b.Files))
	for i, f := range b.Files {
		paths[i] = f.Path
	}
	return paths
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		in   string
		want metadata.FieldType
	}{
		{"Text", metadata.TypeText},
		{"TextArea", metadata.TypeLongText},
		{"Date", metadata.TypeDate},
		{"DateTime", metadata.TypeDateTime},
		{"Number", metadata.TypeNumber},
		{"Checkbox", metadata.TypeCheckbox},
		{"Picklist", metadata.TypePicklist},
		{"Geolocation", metadata.TypeText},
		{"text", metadata.TypeText},
		{"", metadata.TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := metadata.ResolveType(tt.in); got != tt.want {
				t.Errorf("ResolveType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateLayout(t *testing.T) {
	b := metadata.Generate(object.Definition{
		Name:     "Beat_Plan",
		OrgAlias: "dev",
		Fields:   []object.Field{{Name: "Location", Label: "Location", Type: "Text"}},
	})

	if b.APIName != "Beat_Plan__c" {
		t.Errorf("APIName = %q, want %q", b.APIName, "Beat_Plan__c")
	}

	want := []string{
		"unpackaged/package.xml",
		"unpackaged/objects/Beat_Plan__c.object-meta.xml",
		"unpackaged/objects/Beat_Plan__c.fields-meta.xml",
	}
	got := filePaths(b)
	if len(got) != len(want) {
		t.Fatalf("Generate() produced %d files, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Files[%d].Path = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateObjectDescriptor(t *testing.T) {
	b := metadata.Generate(object.Definition{
		Name:     "Beat_Plan",
		OrgAlias: "dev",
		Fields:   []object.Field{{Name: "Location", Label: "Location", Type: "Text"}},
	})

	want := `<?xml version="1.0" encoding="UTF-8"?>
<CustomObject xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Beat_Plan</label>
    <pluralLabel>Beat_Plans</pluralLabel>
    <nameField>
        <label>Beat_Plan Number</label>
        <type>AutoNumber</type>
        <displayFormat>{00000000}</displayFormat>
    </nameField>
    <deploymentStatus>Deployed</deploymentStatus>
    <sharingModel>ReadWrite</sharingModel>
    <enableBulkApi>true</enableBulkApi>
    <enableHistory>false</enableHistory>
    <enableReports>true</enableReports>
    <enableSearch>true</enableSearch>
    <enableSharing>true</enableSharing>
    <enableStreamingApi>true</enableStreamingApi>
</CustomObject>
`

	got := string(findFile(t, b, "unpackaged/objects/Beat_Plan__c.object-meta.xml"))
	if got != want {
		t.Errorf("object descriptor mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateManifest(t *testing.T) {
	b := metadata.Generate(object.Definition{
		Name:     "Invoice",
		OrgAlias: "dev",
		Fields:   []object.Field{{Name: "Total", Label: "Total", Type: "Number"}},
	})

	want := `<?xml version="1.0" encoding="UTF-8"?>
<Package xmlns="http://soap.sforce.com/2006/04/metadata">
    <types>
        <members>Invoice__c</members>
        <name>CustomObject</name>
    </types>
    <version>58.0</version>
</Package>
`

	got := string(findFile(t, b, "unpackaged/package.xml"))
	if got != want {
		t.Errorf("manifest mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateFieldsDescriptor(t *testing.T) {
	b := metadata.Generate(object.Definition{
		Name:     "Invoice",
		OrgAlias: "dev",
		Fields: []object.Field{
			{Name: "Memo", Label: "Memo", Type: "Text"},
			{Name: "Total", Label: "Grand Total", Type: "Number"},
		},
	})

	want := `<?xml version="1.0" encoding="UTF-8"?>
<CustomObject xmlns="http://soap.sforce.com/2006/04/metadata">
    <fields>
        <fullName>Memo__c</fullName>
        <label>Memo</label>
        <type>Text</type>
        <length>255</length>
        <required>false</required>
    </fields>
    <fields>
        <fullName>Total__c</fullName>
        <label>Grand Total</label>
        <type>Number</type>
        <precision>18</precision>
        <scale>0</scale>
        <required>false</required>
    </fields>
</CustomObject>
`

	got := string(findFile(t, b, "unpackaged/objects/Invoice__c.fields-meta.xml"))
	if got != want {
		t.Errorf("fields descriptor mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateFieldTemplates(t *testing.T) {
	tests := []struct {
		name         string
		fieldType    string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:      "text area",
			fieldType: "TextArea",
			wantContains: []string{
				"<type>LongTextArea</type>",
				"<length>32768</length>",
				"<visibleLines>3</visibleLines>",
				"<required>false</required>",
			},
		},
		{
			name:         "date",
			fieldType:    "Date",
			wantContains: []string{"<type>Date</type>", "<required>false</required>"},
			wantAbsent:   []string{"<length>", "<precision>"},
		},
		{
			name:         "date time",
			fieldType:    "DateTime",
			wantContains: []string{"<type>DateTime</type>", "<required>false</required>"},
			wantAbsent:   []string{"<length>"},
		},
		{
			name:      "checkbox",
			fieldType: "Checkbox",
			wantContains: []string{
				"<type>Checkbox</type>",
				"<defaultValue>false</defaultValue>",
			},
			wantAbsent: []string{"<required>"},
		},
		{
			name:      "picklist",
			fieldType: "Picklist",
			wantContains: []string{
				"<type>Picklist</type>",
				"<restricted>true</restricted>",
				"<sorted>false</sorted>",
				"<fullName>Option 1</fullName>",
				"<fullName>Option 2</fullName>",
				"<default>false</default>",
			},
			wantAbsent: []string{"<required>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := metadata.Generate(object.Definition{
				Name:     "Thing",
				OrgAlias: "dev",
				Fields:   []object.Field{{Name: "F", Label: "F", Type: tt.fieldType}},
			})
			got := string(findFile(t, b, "unpackaged/objects/Thing__c.fields-meta.xml"))

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("fields descriptor missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("fields descriptor should not contain %q:\n%s", absent, got)
				}
			}
		})
	}
}

func TestUnknownTypeMatchesText(t *testing.T) {
	gen := func(fieldType string) []byte {
		b := metadata.Generate(object.Definition{
			Name:     "Thing",
			OrgAlias: "dev",
			Fields:   []object.Field{{Name: "F", Label: "F", Type: fieldType}},
		})
		return findFile(t, b, "unpackaged/objects/Thing__c.fields-meta.xml")
	}

	text := gen("Text")
	for _, unknown := range []string{"Geolocation", "Currency", "URL", ""} {
		if got := gen(unknown); !bytes.Equal(got, text) {
			t.Errorf("fields descriptor for type %q differs from Text:\ngot:\n%s\nwant:\n%s", unknown, got, text)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	types := []string{"Text", "TextArea", "Date", "DateTime", "Number", "Checkbox", "Picklist"}
	fields := make([]object.Field, len(types))
	for i, ft := range types {
		fields[i] = object.Field{Name: "F" + ft, Label: "Field " + ft, Type: ft}
	}
	d := object.Definition{Name: "Everything", OrgAlias: "dev", Fields: fields}

	first := metadata.Generate(d)
	second := metadata.Generate(d)

	if len(first.Files) != len(second.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(first.Files), len(second.Files))
	}
	for i := range first.Files {
		if first.Files[i].Path != second.Files[i].Path {
			t.Errorf("Files[%d].Path = %q vs %q", i, first.Files[i].Path, second.Files[i].Path)
		}
		if !bytes.Equal(first.Files[i].Body, second.Files[i].Body) {
			t.Errorf("Files[%d] (%s) not byte-identical across runs", i, first.Files[i].Path)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	b := metadata.Generate(object.Definition{
		Name:     "Account_Ext",
		OrgAlias: "dev",
		Fields:   []object.Field{{Name: "Cond", Label: "P&L < 100", Type: "Text"}},
	})
	got := string(findFile(t, b, "unpackaged/objects/Account_Ext__c.fields-meta.xml"))
	if !strings.Contains(got, "<label>P&amp;L &lt; 100</label>") {
		t.Errorf("label not escaped:\n%s", got)
	}
}
