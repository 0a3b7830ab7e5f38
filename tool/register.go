package tool

// RegisterDefaults builds a Registry populated with every tool group
// spec.md §4.1 defines (contract, clause, compliance, risk, document,
// logging). extractor backs the extract_clauses tool's document-text
// retrieval; everything else is satisfied by deps.
func RegisterDefaults(deps Deps, extractor TextExtractor) *Registry {
	r := New()
	registerContractTools(r, deps)
	registerClauseTools(r, deps, extractor)
	registerComplianceTools(r, deps)
	registerRiskTools(r, deps)
	registerDocumentTools(r, deps)
	registerLoggingTools(r, deps)
	return r
}
