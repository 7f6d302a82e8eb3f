package models

// Роли пользователей
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ProposalStatus константы статусов коммерческих предложений
const (
	ProposalStatusDraft             = "draft"
	ProposalStatusSent              = "sent"
	ProposalStatusViewed            = "viewed"
	ProposalStatusAccepted          = "accepted"
	ProposalStatusRejected          = "rejected"
	ProposalStatusRevisionRequested = "revision_requested"
)

// InvoiceStatus константы статусов счетов
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// ContractStatus константы статусов контрактов
const (
	ContractStatusDraft            = "draft"
	ContractStatusSent             = "sent"
	ContractStatusViewed           = "viewed"
	ContractStatusPendingSignature = "pending_signature"
	ContractStatusPartiallySigned  = "partially_signed"
	ContractStatusFullySigned      = "fully_signed"
	ContractStatusExecuted         = "executed"
)

// TaskStatus константы статусов задач
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// TemplateType константы типов шаблонов документов
const (
	TemplateTypeProposal = "proposal"
	TemplateTypeInvoice  = "invoice"
	TemplateTypeContract = "contract"
	TemplateTypeDeck     = "deck"
)

// FieldType константы типов полей шаблона
const (
	FieldTypeText      = "text"
	FieldTypeTextarea  = "textarea"
	FieldTypeNumber    = "number"
	FieldTypeDate      = "date"
	FieldTypeEmail     = "email"
	FieldTypePhone     = "phone"
	FieldTypeLineItems = "line_items"
)

// Каналы доставки уведомлений
const (
	NotifyChannelInApp = "in_app"
	NotifyChannelEmail = "email"
	NotifyChannelSMS   = "sms"
)

// Ответы клиента на предложение, допустимые в публичном эндпоинте
var ValidProposalResponses = map[string]struct{}{
	ProposalStatusAccepted:          {},
	ProposalStatusRejected:          {},
	ProposalStatusRevisionRequested: {},
}

// ValidTemplateTypes список валидных типов шаблонов
var ValidTemplateTypes = map[string]struct{}{
	TemplateTypeProposal: {},
	TemplateTypeInvoice:  {},
	TemplateTypeContract: {},
	TemplateTypeDeck:     {},
}

// ValidTaskStatuses список валидных статусов задач
var ValidTaskStatuses = map[string]struct{}{
	TaskStatusTodo:       {},
	TaskStatusInProgress: {},
	TaskStatusDone:       {},
}

// Статусы контракта, которые считаются "ожидающими подписи"
var ContractPendingSignatureStatuses = []string{
	ContractStatusSent,
	ContractStatusViewed,
	ContractStatusPendingSignature,
	ContractStatusPartiallySigned,
}

// Статусы контракта, допускающие переход к следующей подписи
var ValidContractSignTransitions = map[string]string{
	ContractStatusSent:             ContractStatusPartiallySigned,
	ContractStatusViewed:           ContractStatusPartiallySigned,
	ContractStatusPendingSignature: ContractStatusPartiallySigned,
	ContractStatusPartiallySigned:  ContractStatusFullySigned,
	ContractStatusFullySigned:      ContractStatusExecuted,
}
