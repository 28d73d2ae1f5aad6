package i18n

// 服务端和客户端共享的提示信息，参数使用 {0} {1} 占位
var messages = map[string]map[string]string{
	English: {
		// 服务端
		"internal_error":                 "Internal server error",
		"unauthorized":                   "You are not logged in",
		"invalid_token":                  "Invalid token",
		"forbidden":                      "Insufficient permissions",
		"tenant_required":                "dsp_code is required",
		"tenant_mismatch":                "You cannot access another DSP",
		"login_success":                  "Logged in",
		"login_failed":                   "Unknown username or wrong password",
		"logout_success":                 "Logged out",
		"invalid_day":                    "selectedDay must look like \"Sun Oct 20 2024\"",
		"invalid_date":                   "Invalid date",
		"disponibilities_fetched":        "Availabilities loaded",
		"disponibilities_empty":          "No availability found",
		"disponibility_not_found":        "Availability not found",
		"confirmations_saved":            "Confirmations saved",
		"suspension_saved":               "Shifts suspended",
		"presence_saved":                 "Presence updated",
		"seen_saved":                     "Seen status updated",
		"presence_requires_confirmation": "Presence can only be set on a confirmed shift",
		"retry":                          "The record changed in the meantime, please retry",
		"warning_created":                "Warning created",
		"warning_updated":                "Warning updated",
		"warning_deleted":                "Warning deleted",
		"warnings_fetched":               "Warnings loaded",
		"warning_not_found":              "Warning not found",
		"employee_not_found":             "Employee not found",
		"employees_fetched":              "Employees loaded",
		"photo_conflict":                 "A new photo cannot be attached while removing the current one",
		"photo_invalid":                  "Unsupported photo format",
		"templates_fetched":              "Templates loaded",
		"template_created":               "Template created",
		"template_deleted":               "Template deleted",
		"template_exists":                "A template with this reason already exists",
		"template_not_found":             "Template not found",
		"shifts_fetched":                 "Shifts loaded",

		// 客户端
		"network_error":                "Unable to reach the server, please try again",
		"server_error":                 "The server could not complete the request: {0}",
		"field_required":               "The {0} field is required",
		"partial_failure":              "The suspension could not be completed. Some changes may have been saved, please check before retrying",
		"confirm_delete":               "Are you sure you want to delete this warning?",
		"canceled":                     "Action canceled",
		"in_flight":                    "Please wait, the previous request is still running",
		"empty_day":                    "No availability for this day",
		"presence_before_confirmation": "Presence cannot be recorded before the shift is confirmed",
		"batch_submitted":              "{0} confirmation(s) sent",
		"suspension_done":              "{0} shift(s) suspended",
		"nothing_staged":               "No decision to submit",
		"not_found":                    "The requested item no longer exists",
		"warning_saved":                "Warning saved",
		"unknown_error":                "Something went wrong",
	},
	French: {
		"internal_error":                 "Erreur interne du serveur",
		"unauthorized":                   "Vous n'êtes pas connecté",
		"invalid_token":                  "Jeton invalide",
		"forbidden":                      "Permissions insuffisantes",
		"tenant_required":                "dsp_code est obligatoire",
		"tenant_mismatch":                "Vous ne pouvez pas accéder à un autre DSP",
		"login_success":                  "Connexion réussie",
		"login_failed":                   "Nom d'utilisateur inconnu ou mot de passe incorrect",
		"logout_success":                 "Déconnexion réussie",
		"invalid_day":                    "selectedDay doit ressembler à \"Sun Oct 20 2024\"",
		"invalid_date":                   "Date invalide",
		"disponibilities_fetched":        "Disponibilités chargées",
		"disponibilities_empty":          "Aucune disponibilité trouvée",
		"disponibility_not_found":        "Disponibilité introuvable",
		"confirmations_saved":            "Confirmations enregistrées",
		"suspension_saved":               "Quarts suspendus",
		"presence_saved":                 "Présence mise à jour",
		"seen_saved":                     "Statut de lecture mis à jour",
		"presence_requires_confirmation": "La présence ne peut être indiquée que pour un quart confirmé",
		"retry":                          "L'enregistrement a changé entre-temps, veuillez réessayer",
		"warning_created":                "Avertissement créé",
		"warning_updated":                "Avertissement mis à jour",
		"warning_deleted":                "Avertissement supprimé",
		"warnings_fetched":               "Avertissements chargés",
		"warning_not_found":              "Avertissement introuvable",
		"employee_not_found":             "Employé introuvable",
		"employees_fetched":              "Employés chargés",
		"photo_conflict":                 "Impossible d'ajouter une nouvelle photo en supprimant la photo actuelle",
		"photo_invalid":                  "Format de photo non pris en charge",
		"templates_fetched":              "Modèles chargés",
		"template_created":               "Modèle créé",
		"template_deleted":               "Modèle supprimé",
		"template_exists":                "Un modèle avec cette raison existe déjà",
		"template_not_found":             "Modèle introuvable",
		"shifts_fetched":                 "Quarts chargés",

		"network_error":                "Impossible de joindre le serveur, veuillez réessayer",
		"server_error":                 "Le serveur n'a pas pu traiter la demande : {0}",
		"field_required":               "Le champ {0} est obligatoire",
		"partial_failure":              "La suspension n'a pas pu être terminée. Certaines modifications ont peut-être été enregistrées, vérifiez avant de réessayer",
		"confirm_delete":               "Voulez-vous vraiment supprimer cet avertissement ?",
		"canceled":                     "Action annulée",
		"in_flight":                    "Veuillez patienter, la requête précédente est toujours en cours",
		"empty_day":                    "Aucune disponibilité pour ce jour",
		"presence_before_confirmation": "La présence ne peut pas être enregistrée avant la confirmation du quart",
		"batch_submitted":              "{0} confirmation(s) envoyée(s)",
		"suspension_done":              "{0} quart(s) suspendu(s)",
		"nothing_staged":               "Aucune décision à envoyer",
		"not_found":                    "L'élément demandé n'existe plus",
		"warning_saved":                "Avertissement enregistré",
		"unknown_error":                "Une erreur est survenue",
	},
}
