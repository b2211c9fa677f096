package domain

// CustomFieldType is the store's enumerated field type. Upstream field_type
// strings are translated into these values; unmapped values fall back to
// CustomFieldText with a logged warning.
type CustomFieldType string

const (
	CustomFieldText        CustomFieldType = "TEXT"
	CustomFieldNumber      CustomFieldType = "NUMBER"
	CustomFieldDate        CustomFieldType = "DATE"
	CustomFieldDropdown    CustomFieldType = "DROPDOWN"
	CustomFieldMultiselect CustomFieldType = "MULTISELECT"
	CustomFieldRadio       CustomFieldType = "RADIO"
	CustomFieldCheckbox    CustomFieldType = "CHECKBOX"
	CustomFieldURL         CustomFieldType = "URL"
	CustomFieldEmail       CustomFieldType = "EMAIL"
	CustomFieldPhone       CustomFieldType = "PHONE"
	CustomFieldCurrency    CustomFieldType = "CURRENCY"
	CustomFieldPercent     CustomFieldType = "PERCENT"
	CustomFieldDateTime    CustomFieldType = "DATETIME"
	CustomFieldMultiline   CustomFieldType = "MULTILINE"
	CustomFieldList        CustomFieldType = "LIST"
	CustomFieldBoolean     CustomFieldType = "BOOLEAN"
	CustomFieldHidden      CustomFieldType = "HIDDEN"
)

// CustomField is a custom field definition. RecordType names the parent model
// (contacts, companies, opportunities, orders, subscriptions) the field was
// defined on.
type CustomField struct {
	ID           int64
	Name         string
	Label        string
	FieldName    string
	Type         CustomFieldType
	RecordType   string
	DefaultValue string
	Options      []string
}
