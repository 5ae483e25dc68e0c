package database

import "sgo/internal/config"

// DefaultCostCenters is the global catalog seeded when no catalog file is provided.
// Codes equal the slug of the name, which is how new cost centers are coded too.
var DefaultCostCenters = []config.CostCenterSeed{
	{Code: "combustivel", Name: "Combustível"},
	{Code: "manutencao-de-veiculos", Name: "Manutenção de Veículos"},
	{Code: "pedagio", Name: "Pedágio"},
	{Code: "materiais-de-construcao", Name: "Materiais de Construção"},
	{Code: "ferramentas-e-equipamentos", Name: "Ferramentas e Equipamentos"},
	{Code: "locacao-de-equipamentos", Name: "Locação de Equipamentos"},
	{Code: "servicos-terceirizados", Name: "Serviços Terceirizados"},
	{Code: "epi", Name: "EPI"},
	{Code: "salarios", Name: "Salários"},
	{Code: "ferias", Name: "Férias"},
	{Code: "decimo-terceiro", Name: "Décimo Terceiro"},
	{Code: "rescisoes", Name: "Rescisões"},
	{Code: "inss", Name: "INSS"},
	{Code: "fgts", Name: "FGTS"},
	{Code: "iss", Name: "ISS"},
	{Code: "impostos-federais", Name: "Impostos Federais"},
	{Code: "despesas-administrativas", Name: "Despesas Administrativas"},
	{Code: "aluguel", Name: "Aluguel"},
	{Code: "energia-e-agua", Name: "Energia e Água"},
	{Code: "telefonia-e-internet", Name: "Telefonia e Internet"},
	{Code: "hospedagem", Name: "Hospedagem"},
	{Code: "alimentacao", Name: "Alimentação"},
	{Code: "outros", Name: "Outros"},
}
