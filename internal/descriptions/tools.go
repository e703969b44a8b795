package descriptions

// Tool descriptions with practical examples and use cases

const (
	ContractCompareDescription = `Compare two versions of a partner contract and report what changed in the payout terms.

**When to use:** A contract was renegotiated or re-issued and you need to know which payouts, conditions and policy terms differ.

**How it works:** Both documents are read in parallel, split into sections such as "Free Trial" and "Online Sale", and their payout groups are matched by condition (customer status, SKU, category, currency...). Policy terms such as Registration or Invoicing are compared one by one.

**Examples:**
• Renewal review: "Compare contracts/2024.pdf with contracts/2025.pdf"
• Draft check: pass old_text and new_text with pasted contract text
• Plain diff: strategy "lines" compares the documents line by line and highlights amounts

**Output formats:** html (default), text, json, yaml; xlsx and pdf are returned as base64 blobs.

**Best practices:** Use json when the result is processed further; a payout change with "+$8.00 change" carries the exact delta in cents.`

	ContractParseDescription = `Show how a contract document is understood: its policy terms and payout groups per section.

**When to use:** A comparison looks wrong, or you need the structured payout table of a single contract.

**Examples:**
• "Parse contracts/2025.pdf and list the Free Trial payout groups"
• Check that a custom rules file recognizes a new section

**Best practices:** If a section is missing here it will also be missing in contract_compare.`

	PDFReadFileDescription = `Extract the raw text of a contract PDF or text file, one row per line and one newline per page.

**When to use:** You need the text a comparison works on, for example to debug the parser or quote a clause.

**Examples:**
• "Read contracts/2025.pdf"

**Best practices:** The reply states the page count and PDF version; a PDF without a text layer is reported as an error.`

	ContractListDescription = `List the contract documents (PDF and text files) in the document directory.

**When to use:** Before contract_compare, to find the paths of the two versions to compare.

**Examples:**
• "Which contracts do we have?"
• "Find the 2025 partner contract": query "2025 partner"

**Best practices:** The query matches file names by substring or word by word; returned paths can be passed to contract_compare as is.`
)

// Tool names
const (
	ToolContractCompare = "contract_compare"
	ToolContractParse   = "contract_parse"
	ToolPDFReadFile     = "pdf_read_file"
	ToolContractList    = "contract_list"
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolContractCompare: ContractCompareDescription,
	ToolContractParse:   ContractParseDescription,
	ToolPDFReadFile:     PDFReadFileDescription,
	ToolContractList:    ContractListDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}
