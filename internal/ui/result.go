// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

// User facing texts.
const (
	TitleInvalidFile    = "Arquivo Inválido"
	MessageInvalidFile  = "Por favor, use apenas arquivos Excel (.xlsx ou .xls)."
	TitleNoClient       = "Cliente não selecionado"
	MessageNoClient     = "Por favor, selecione um cliente para continuar."
	TitleNoFile         = "Arquivo não selecionado"
	MessageNoFile       = "Por favor, selecione um arquivo Excel de orçamento."
	TitleProcessing     = "Erro no Processamento"
	MessageServerError  = "Ocorreu um erro no servidor."
	TitleSuccess        = "Arquivo Processado!"
	MessageSuccess      = "Seu arquivo foi convertido com sucesso."
	DefaultFilename     = "orcamento_convertido_olist.xlsx"
	Placeholder         = "Selecione um cliente e um arquivo Excel para começar."
	DownloadAgain       = "Baixar Arquivo Novamente"
	NoticeClientsError  = "Erro ao carregar lista de clientes: %s"
	NoticeClientsFailed = "Falha ao buscar clientes: %s"
	NoticeNoClients     = "Nenhum cliente encontrado. Verifique os arquivos de mapeamento."
)

// Kind classifies a Failure.
type Kind int

const (
	// KindValidation is a missing client or file. No request was made.
	KindValidation Kind = iota
	// KindTransport is a network failure or a non-2xx conversion response.
	KindTransport
	// KindInvalidInput is a dropped file that is not a spreadsheet.
	KindInvalidInput
	// KindBusy is a submission attempted while another is in flight.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindInvalidInput:
		return "invalid-input"
	case KindBusy:
		return "busy"
	}
	return "unknown"
}

// Result is the outcome of a submission. It is either a Success or a
// Failure.
type Result interface {
	isResult()
}

// Success carries the converted file.
type Success struct {
	Filename string
	Blob     []byte
	// Location is where the blob was delivered, empty when it was not.
	Location string
}

// Failure describes why a submission did not produce a file.
type Failure struct {
	Kind    Kind
	Title   string
	Message string
	Err     error
}

func (Success) isResult() {}
func (Failure) isResult() {}

// Error makes a Failure usable as an error. Unwrap exposes Err.
func (f Failure) Error() string {
	return f.Title + ": " + f.Message
}

func (f Failure) Unwrap() error {
	return f.Err
}
