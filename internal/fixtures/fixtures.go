// Package fixtures holds the demo content shared by the terminal client and
// the local backend: seeded documents, community groups and the canned
// support conversation.
package fixtures

import (
	"github.com/fenggwsx/DocuMind/internal/session"
)

// DemoOwner is the account that owns the seeded documents.
var DemoOwner = struct {
	Name     string
	Email    string
	Password string
	Company  string
}{
	Name:     "Jane Doe",
	Email:    "jane.doe@documind.dev",
	Password: "documind-demo",
	Company:  "Acme Corp",
}

// Document is a seeded library entry with its paragraphs.
type Document struct {
	ID         string
	Title      string
	Type       string
	Summary    string
	UploadDate string
	FileSize   string
	IsPublic   bool
	Paragraphs []string
}

// Documents are owned by DemoOwner once seeded.
var Documents = []Document{
	{
		ID:         "doc-fanuc",
		Title:      "FANUC Robot Series R-30iB Mate + Mate Plus Maintenance Manual",
		Type:       "Maintenance Manual",
		Summary:    "Comprehensive maintenance manual for R-30iB Mate/Mate Plus controllers. Covers safety protocols, troubleshooting, component replacement, and connection diagrams.",
		UploadDate: "2023-11-22",
		FileSize:   "12.5 MB",
		IsPublic:   true,
		Paragraphs: []string{
			"1. Overview: This manual describes the maintenance and connection of R-30iB Mate/ R-30iB Mate Plus.",
			"2. Safety: Safety is essential whenever robots are used. Keep in mind the following factors with regard to safety: The safety of people and equipment, Use of safety enhancing devices.",
			"3. Troubleshooting: This chapter describes the checking method and corrective action for each alarm code indicated if a hardware alarm occurs.",
			"4. Replacing Units: This section explains how to replace each unit in the control section. Before you start to replace a unit, turn off the controller main power.",
		},
	},
	{
		ID:         "doc-1",
		Title:      "Project Omega Technical Manual",
		Type:       "Technical Specification",
		Summary:    "Overview of the Omega propulsion system standards and safety protocols.",
		UploadDate: "2023-10-15",
		FileSize:   "2.4 MB",
		IsPublic:   true,
		Paragraphs: []string{
			"1. Introduction: The Omega Propulsion System is designed for high-efficiency orbital transfers.",
			"2. Safety Protocols: All operators must wear Class-4 hazmat suits when handling the fuel cells.",
			"3. Maintenance: The core cylinder requires flushing every 400 operational hours to prevent residue buildup.",
			"4. Emergency Procedures: In case of containment breach, initiate Sequence Alpha immediately.",
			"5. Legal: Use of this technology is restricted to licensed entities under the Galactic Trade Agreement.",
		},
	},
	{
		ID:         "doc-2",
		Title:      "Q3 Financial Report 2023",
		Type:       "Financial Audit",
		Summary:    "Quarterly earnings breakdown and projection for Q4.",
		UploadDate: "2023-11-01",
		FileSize:   "1.1 MB",
		IsPublic:   true,
		Paragraphs: []string{
			"Executive Summary: Q3 saw a 15% increase in net revenue due to market expansion.",
			"Expenses: Operational costs rose by 5% attributed to new hiring initiatives.",
			"Forecast: We project a flat Q4 due to seasonal supply chain constraints.",
		},
	},
	{
		ID:         "doc-3",
		Title:      "Internal Security Protocols v9",
		Type:       "Confidential",
		Summary:    "Restricted access security protocols for site B.",
		UploadDate: "2023-11-10",
		FileSize:   "4.5 MB",
		IsPublic:   false,
		Paragraphs: []string{"CONFIDENTIAL: Level 5 Clearance Required."},
	},
}

// Catalog returns the community groups, their histories and the support
// script. Each call returns fresh slices.
func Catalog() session.Catalog {
	return session.Catalog{
		Groups: []session.Group{
			{
				ID:              "g-fanuc",
				Name:            "FANUC R-30iB Maintenance",
				Description:     "Discussion for troubleshooting and maintaining R-30iB controllers.",
				Members:         156,
				Active:          true,
				RelatedDocID:    "doc-fanuc",
				RelatedDocTitle: "FANUC Robot Series R-30iB Mate + Mate Plus Maintenance Manual",
				Visibility:      session.VisibilityPublic,
				Tags:            []string{"robotics", "maintenance", "fanuc"},
			},
			{
				ID:              "g-1",
				Name:            "Omega Tech Spec Review",
				Description:     "Deep dive into the propulsion safety protocols and maintenance cycles.",
				Members:         12,
				Active:          true,
				RelatedDocID:    "doc-1",
				RelatedDocTitle: "Project Omega Technical Manual",
				Visibility:      session.VisibilityPublic,
				Tags:            []string{"technical", "omega", "safety"},
			},
			{
				ID:              "g-2",
				Name:            "Q3 Audit Compliance",
				Description:     "Checking Q3 figures against the new federal tax guidelines.",
				Members:         8,
				Active:          true,
				RelatedDocID:    "doc-2",
				RelatedDocTitle: "Q3 Financial Report 2023",
				Visibility:      session.VisibilityPublic,
				Tags:            []string{"finance", "audit"},
			},
			{
				ID:              "g-4",
				Name:            "Board Meeting Prep",
				Description:     "Internal discussion for Q4 forecasting strategy.",
				Members:         4,
				Active:          true,
				RelatedDocID:    "doc-2",
				RelatedDocTitle: "Q3 Financial Report 2023",
				Visibility:      session.VisibilityPrivate,
				OrgName:         "Acme Corp",
				Tags:            []string{"finance", "internal"},
			},
		},
		History: map[string][]session.ChatMessage{
			"g-fanuc": {{
				ID:         "msg-fanuc-1",
				Sender:     session.SenderOther,
				SenderName: "Sarah Connors",
				Text:       "Has anyone reviewed the latest safety compliance section?",
				Timestamp:  "10:30",
			}},
			"g-1": {
				{
					ID:         "msg-g1-1",
					Sender:     session.SenderOther,
					SenderName: "Sarah Connors",
					Text:       "Has anyone reviewed the latest safety compliance section?",
					Timestamp:  "10:30",
				},
				{
					ID:         "msg-g1-2",
					Sender:     session.SenderOther,
					SenderName: "Mike Ross",
					Text:       "The flushing interval in section 3 looks short to me.",
					Timestamp:  "10:42",
				},
			},
			"g-2": {{
				ID:         "msg-g2-1",
				Sender:     session.SenderOther,
				SenderName: "Jessica Pearson",
				Text:       "Expense growth is within the audit threshold.",
				Timestamp:  "09:15",
			}},
		},
		Support: session.SupportScript{
			Greeting: "Hello! I am the DocuMind Support Assistant. How can I help you today?",
			Replies: []session.SupportReply{
				{
					Keywords: []string{"password", "login", "sign in"},
					Reply:    "To reset your password, please go to the Settings page and click on 'Security'.",
				},
				{
					Keywords: []string{"ocr", "pdf", "docx", "format", "upload", "file"},
					Reply:    "Our OCR engine supports PDF, DOCX, and standard image formats. Are you having trouble with a specific file type?",
				},
				{
					Keywords: []string{"billing", "invoice", "subscription", "plan", "payment"},
					Reply:    "For billing inquiries, please check the 'Subscription' tab in your dashboard.",
				},
				{
					Keywords: []string{"human", "agent", "person", "escalate"},
					Reply:    "I can connect you with a human agent if this issue persists. Would you like me to do that?",
				},
			},
			Fallback: "I understand. Could you provide more details about the specific document you are trying to analyze?",
		},
	}
}
