package triples

// Predicate vocabulary. The wdo terms come from the web-artifact taxonomy
// namespace; rdf/rdfs/dcterms are the standard vocabularies.
const (
	WDONamespace = "http://purl.example.org/web_dev_km_bfo#"

	PredType        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	PredLabel       = "http://www.w3.org/2000/01/rdf-schema#label"
	PredCreator     = "http://purl.org/dc/terms/creator"
	PredDescription = "http://purl.org/dc/terms/description"
	PredCreated     = "http://purl.org/dc/terms/created"

	PredHasTag      = WDONamespace + "hasTag"
	PredHasChecksum = WDONamespace + "hasChecksum"
	// PredBearsContent links a carrier to the content entity standing for
	// its semantic payload.
	PredBearsContent = WDONamespace + "bearsInformationContent"

	ClassTag           = WDONamespace + "Tag"
	ClassContentEntity = WDONamespace + "InformationContentEntity"
)

// ClassURI returns the taxonomy URI for a registry class name.
func ClassURI(name string) string {
	return WDONamespace + name
}
