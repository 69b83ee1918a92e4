package entity

// NNC incident categories.
const (
	NNCNonConformity    = "Não conformidade"
	NNCRiskCircumstance = "Circunstância de Risco"
	NNCNearMiss         = "Near Miss"
	NNCEventNoHarm      = "Evento sem dano"
	NNCEventWithHarm    = "Evento com dano"
)

// Damage levels for "Evento com dano".
const (
	DamageMild     = "Dano leve"
	DamageModerate = "Dano moderado"
	DamageSevere   = "Dano grave"
	DamageDeath    = "Óbito"
)

// NeverEventNotApplicable is the explicit "does not apply" value; the field is
// still mandatory at classification time.
const NeverEventNotApplicable = "Não Aplicável (N/A)"

// Main event types. Clinical, non-clinical and occupational types require at
// least one sub-type from the fixed lists; the last two take free text.
const (
	EventTypeClinical       = "Clínico"
	EventTypeNonClinical    = "Não-clínico"
	EventTypeOccupational   = "Ocupacional"
	EventTypeTechnicalIssue = "Queixa técnica"
	EventTypeOther          = "Outros"
)

// NNCCategories lists every valid incident category.
var NNCCategories = []string{
	NNCNonConformity,
	NNCRiskCircumstance,
	NNCNearMiss,
	NNCEventNoHarm,
	NNCEventWithHarm,
}

// DamageLevels lists the valid levels for events with harm.
var DamageLevels = []string{DamageMild, DamageModerate, DamageSevere, DamageDeath}

// Priorities for resolution.
var Priorities = []string{"Baixa", "Média", "Alta", "Crítica"}

// EventShifts for the occurrence.
var EventShifts = []string{"Diurno", "Noturno", "Não sei informar"}

// OMSClassifications are the WHO patient-safety tags.
var OMSClassifications = []string{
	"Quedas", "Infecções", "Medicação", "Cirurgia", "Identificação do Paciente",
	"Procedimentos", "Dispositivos Médicos", "Urgência/Emergência",
	"Segurança do Ambiente", "Comunicação", "Recursos Humanos", "Outros",
}

// NeverEvents is the fixed reference list of catastrophic incident types.
var NeverEvents = []string{
	"Cirurgia no local errado do corpo, no paciente errado ou o procedimento errado",
	"Retenção de corpo estranho em paciente após a cirurgia",
	"Morte de paciente ou lesão grave associada ao uso de dispositivo médico",
	"Morte de paciente ou lesão grave associada à incompatibilidade de tipo sanguíneo",
	"Morte de paciente ou lesão grave associada a erro de medicação",
	"Morte de paciente ou lesão grave associada à trombose venosa profunda (TVP) ou embolia pulmonar (EP) após artroplastia total de quadril ou joelho",
	"Morte de paciente ou lesão grave associada a hipoglicemia",
	"Morte de paciente ou lesão grave associada à infecção hospitalar",
	"Morte de paciente ou lesão grave associada a úlcera por pressão (escaras) adquirida no hospital",
	"Morte de paciente ou lesão grave associada à contenção inadequada",
	"Morte ou lesão grave associada à falha ou uso incorreto de equipamentos de proteção individual (EPIs)",
	"Morte de paciente ou lesão grave associada à queda do paciente",
	"Morte de paciente ou lesão grave associada à violência física ou sexual no ambiente hospitalar",
	"Morte de paciente ou lesão grave associada ao desaparecimento de paciente",
}

// EventSubTypes maps each main event type to its fixed sub-type list. Types
// with an empty list take free-text specification instead.
var EventSubTypes = map[string][]string{
	EventTypeClinical: {
		"Infecção Relacionada à Assistência à Saúde (IRAS)",
		"Administração de Antineoplásicos",
		"META 1 - Identificação Incorreta do Paciente",
		"META 2 - Falha na Comunicação entre Profissionais",
		"META 3 - Problema com Medicamento (Segurança Medicamentosa)",
		"META 4 - Procedimento Incorreto (Cirurgia/Parto)",
		"META 5 - Higiene das Mãos Inadequada",
		"META 6 - Queda de Paciente e Lesão por Pressão",
		"Transfusão Inadequada de Sangue ou Derivados",
		"Problema com Dispositivo/Equipamento Médico",
		"Evento Crítico ou Intercorrência Grave em Processo Seguro",
		"Problema Nutricional Relacionado à Assistência",
		"Não Conformidade com Protocolos Gerenciados",
		"Quebra de SLA (Atraso ou Falha na Assistência)",
		"Evento Relacionado ao Parto e Nascimento",
		"Crise Convulsiva em Ambiente Assistencial",
		"[Hemodiálise] Coagulação do Sistema Extracorpóreo",
		"[Hemodiálise] Desconexão Acidental da Agulha de Punção da Fístula Arteriovenosa",
		"[Hemodiálise] Desconexão Acidental do Cateter às Linhas de Hemodiálise",
		"[Hemodiálise] Embolia Pulmonar Relacionada à Hemodiálise",
		"[Hemodiálise] Exteriorização Acidental da Agulha de Punção da Fístula Arteriovenosa",
		"[Hemodiálise] Exteriorização Acidental do Cateter de Hemodiálise",
		"[Hemodiálise] Falha na Identificação do Dialisador ou das Linhas de Hemodiálise",
		"[Hemodiálise] Falha no Fluxo Sanguíneo do Cateter de Hemodiálise",
		"[Hemodiálise] Falha no Fluxo Sanguíneo da Fístula Arteriovenosa",
		"[Hemodiálise] Hematoma Durante a Passagem do Cateter de Hemodiálise",
		"[Hemodiálise] Hemólise Relacionada à Hemodiálise",
		"[Hemodiálise] Infiltração, Edema ou Hematoma na Fístula Arteriovenosa",
		"[Hemodiálise] Pneumotórax Durante a Passagem do Cateter de Hemodiálise",
		"[Hemodiálise] Pseudoaneurisma na Fístula Arteriovenosa",
		"[Hemodiálise] Punção Arterial Acidental Durante Inserção do Cateter de Hemodiálise",
		"[Hemodiálise] Rotura da Fístula Arteriovenosa",
		"[Hemodiálise] Sangramento pelo Óstio do Cateter de Hemodiálise",
		"[Hemodiálise] Outras Falhas Relacionadas à Hemodiálise",
	},
	EventTypeNonClinical: {
		"Incidente de Segurança Patrimonial",
		"Problema Estrutural/Instalações",
		"Problema de Abastecimento/Logística",
		"Incidente de TI/Dados",
		"Erro Administrativo",
		"Outros Eventos Não-clínicos",
	},
	EventTypeOccupational: {
		"Acidente com Material Biológico",
		"Acidente de Trabalho (geral)",
		"Doença Ocupacional",
		"Exposição a Agentes de Risco",
		"Outros Eventos Ocupacionais",
	},
	EventTypeTechnicalIssue: {},
	EventTypeOther:          {},
}

// RequiresSubTypeList reports whether the main type demands at least one
// sub-type from the fixed list (as opposed to free text).
func RequiresSubTypeList(mainType string) bool {
	switch mainType {
	case EventTypeClinical, EventTypeNonClinical, EventTypeOccupational:
		return true
	}
	return false
}

// RequiresFreeTextSubType reports whether the main type demands a free-text
// specification.
func RequiresFreeTextSubType(mainType string) bool {
	return mainType == EventTypeOther || mainType == EventTypeTechnicalIssue
}

// ValidNNCCategory reports whether the value is one of the incident categories.
func ValidNNCCategory(category string) bool {
	for _, c := range NNCCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidMainEventType reports whether the main type is part of the taxonomy.
func ValidMainEventType(mainType string) bool {
	_, ok := EventSubTypes[mainType]
	return ok
}
