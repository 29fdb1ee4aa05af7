package models

// ReportStatus is the moderation state of a community report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pendente"
	ReportApproved ReportStatus = "aprovado"
	ReportRejected ReportStatus = "rejeitado"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportApproved, ReportRejected:
		return true
	}
	return false
}

// ReportCategory is the closed set of report categories.
type ReportCategory string

const (
	CategorySeguranca      ReportCategory = "seguranca"
	CategoryConvivencia    ReportCategory = "convivencia"
	CategoryInfraestrutura ReportCategory = "infraestrutura"
	CategoryIluminacao     ReportCategory = "iluminacao"
	CategoryTransito       ReportCategory = "transito"
	CategoryLimpeza        ReportCategory = "limpeza"
	CategorySaude          ReportCategory = "saude"
	CategoryMeioAmbiente   ReportCategory = "meio_ambiente"
	CategoryAnimais        ReportCategory = "animais"
	CategoryBarulho        ReportCategory = "barulho"
	CategoryEventos        ReportCategory = "eventos"
	CategoryOutros         ReportCategory = "outros"
)

var ReportCategories = []ReportCategory{
	CategorySeguranca, CategoryConvivencia, CategoryInfraestrutura, CategoryIluminacao,
	CategoryTransito, CategoryLimpeza, CategorySaude, CategoryMeioAmbiente,
	CategoryAnimais, CategoryBarulho, CategoryEventos, CategoryOutros,
}

func (c ReportCategory) Valid() bool {
	switch c {
	case CategorySeguranca, CategoryConvivencia, CategoryInfraestrutura, CategoryIluminacao,
		CategoryTransito, CategoryLimpeza, CategorySaude, CategoryMeioAmbiente,
		CategoryAnimais, CategoryBarulho, CategoryEventos, CategoryOutros:
		return true
	}
	return false
}

// PostStatus is the stored moderation state of a showcase post. Expiration is
// never stored; see services.IsExpired.
type PostStatus string

const (
	PostPending  PostStatus = "pendente"
	PostApproved PostStatus = "aprovado"
	PostRejected PostStatus = "rejeitado"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostPending, PostApproved, PostRejected:
		return true
	}
	return false
}

// PostCategory is the closed set of showcase categories.
type PostCategory string

const (
	PostProduto     PostCategory = "produto"
	PostServico     PostCategory = "servico"
	PostVaga        PostCategory = "vaga"
	PostInformativo PostCategory = "informativo"
	PostComunicado  PostCategory = "comunicado"
)

func (c PostCategory) Valid() bool {
	switch c {
	case PostProduto, PostServico, PostVaga, PostInformativo, PostComunicado:
		return true
	}
	return false
}

// PaymentStatus tracks a checkout session created for a paid submission.
type PaymentStatus string

const (
	PaymentCreated PaymentStatus = "created"
	PaymentPaid    PaymentStatus = "paid"
	PaymentExpired PaymentStatus = "expired"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentCreated, PaymentPaid, PaymentExpired, PaymentFailed:
		return true
	}
	return false
}
