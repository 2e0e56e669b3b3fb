package scorm

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/akozlov/scormgen/internal/course"
)

const (
	nsIMSCP = "http://www.imsproject.org/xsd/imscp_rootv1p1p2"
	nsADLCP = "http://www.adlnet.org/xsd/adlcp_rootv1p2"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"

	schemaLocation = nsIMSCP + " imscp_rootv1p1p2.xsd " + nsADLCP + " adlcp_rootv1p2.xsd"

	scormSchema        = "ADL SCORM"
	scormSchemaVersion = "1.2"
	defaultOrgID       = "default-org"

	// Shared static assets listed as dependencies of every resource.
	styleFilename  = "style.css"
	bridgeFilename = "scorm_api.js"

	// Course-level table of contents page.
	indexFilename = "index.html"
)

type manifestXML struct {
	XMLName    xml.Name `xml:"manifest"`
	Identifier string   `xml:"identifier,attr"`
	Version    string   `xml:"version,attr"`
	NS         string   `xml:"xmlns,attr"`
	NSADLCP    string   `xml:"xmlns:adlcp,attr"`
	NSXSI      string   `xml:"xmlns:xsi,attr"`
	SchemaLoc  string   `xml:"xsi:schemaLocation,attr"`

	Metadata      metadataXML      `xml:"metadata"`
	Organizations organizationsXML `xml:"organizations"`
	Resources     resourcesXML     `xml:"resources"`
}

type metadataXML struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type organizationsXML struct {
	Default      string          `xml:"default,attr"`
	Organization organizationXML `xml:"organization"`
}

type organizationXML struct {
	Identifier string    `xml:"identifier,attr"`
	Title      string    `xml:"title"`
	Items      []itemXML `xml:"item"`
}

type itemXML struct {
	Identifier    string    `xml:"identifier,attr"`
	IdentifierRef string    `xml:"identifierref,attr,omitempty"`
	IsVisible     string    `xml:"isvisible,attr"`
	Title         string    `xml:"title"`
	MasteryScore  string    `xml:"adlcp:masteryscore,omitempty"`
	Items         []itemXML `xml:"item,omitempty"`
}

type resourcesXML struct {
	Resources []resourceXML `xml:"resource"`
}

type resourceXML struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	SCORMType  string    `xml:"adlcp:scormtype,attr"`
	Href       string    `xml:"href,attr"`
	Files      []fileXML `xml:"file"`
}

type fileXML struct {
	Href string `xml:"href,attr"`
}

// Manifest renders the imsmanifest.xml document for a compiled identifier
// tree. Output is deterministic: the same tree and settings always produce
// byte-identical XML.
func Manifest(t *Tree, settings course.Settings) ([]byte, error) {
	mastery := strconv.Itoa(settings.WithDefaults().PassingScore)

	org := organizationXML{
		Identifier: t.OrgID,
		Title:      t.Title,
	}
	for _, mod := range t.Modules {
		modItem := itemXML{
			Identifier: mod.ItemID,
			IsVisible:  "true",
			Title:      mod.Title,
		}
		for _, sec := range mod.Sections {
			secItem := itemXML{
				Identifier: sec.ItemID,
				IsVisible:  "true",
				Title:      sec.Title,
			}
			for _, unit := range sec.Units {
				secItem.Items = append(secItem.Items, itemXML{
					Identifier:    unit.ItemID,
					IdentifierRef: unit.ResourceID,
					IsVisible:     "true",
					Title:         unit.Title,
					MasteryScore:  mastery,
				})
			}
			modItem.Items = append(modItem.Items, secItem)
		}
		org.Items = append(org.Items, modItem)
	}
	if t.FinalTest != nil {
		org.Items = append(org.Items, itemXML{
			Identifier:    t.FinalTest.ItemID,
			IdentifierRef: t.FinalTest.ResourceID,
			IsVisible:     "true",
			Title:         t.FinalTest.Title,
			MasteryScore:  mastery,
		})
	}

	// The table of contents is not part of the organization tree but every
	// file in the archive must be accounted for by the resource list.
	resources := resourcesXML{Resources: []resourceXML{{
		Identifier: "res_index",
		Type:       "webcontent",
		SCORMType:  "sco",
		Href:       indexFilename,
		Files: []fileXML{
			{Href: indexFilename},
			{Href: styleFilename},
		},
	}}}
	for _, leaf := range t.Leaves() {
		resources.Resources = append(resources.Resources, resourceXML{
			Identifier: leaf.ResourceID,
			Type:       "webcontent",
			SCORMType:  "sco",
			Href:       leaf.Filename,
			Files: []fileXML{
				{Href: leaf.Filename},
				{Href: styleFilename},
				{Href: bridgeFilename},
			},
		})
	}

	m := manifestXML{
		Identifier:    Slugify(t.Title),
		Version:       "1.0",
		NS:            nsIMSCP,
		NSADLCP:       nsADLCP,
		NSXSI:         nsXSI,
		SchemaLoc:     schemaLocation,
		Metadata:      metadataXML{Schema: scormSchema, SchemaVersion: scormSchemaVersion},
		Organizations: organizationsXML{Default: t.OrgID, Organization: org},
		Resources:     resources,
	}

	out, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
