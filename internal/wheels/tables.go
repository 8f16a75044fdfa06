package wheels

// Wheel tables for the three suites. INOP rotors ship without notches;
// sessions configure them per rotor.

var defaultRotors = []RotorDef{
	// Legacy
	{Name: "I", Wiring: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", Notches: "Q"},
	{Name: "II", Wiring: "AJDKSIRUXBLHWTMCQGZNPYFVOE", Notches: "E"},
	{Name: "III", Wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", Notches: "V"},
	{Name: "IV", Wiring: "ESOVPZJAYQUIRHXLNFTGKDCMWB", Notches: "J"},
	{Name: "V", Wiring: "VZBRGITYUPSDNHLXAWMJQOFECK", Notches: "Z"},
	{Name: "VI", Wiring: "JPGVOUMFYQBENHZRDKASXLICTW", Notches: "ZM"},
	{Name: "VII", Wiring: "NZJHGRCXMYSWBOUFAIVLPEKQDT", Notches: "ZM"},
	// INOP-38
	{Name: "R1", Wiring: "EUXQ1W3BYF4RK0H7VGPADS59TOIZJL628C#NM/"},
	{Name: "R2", Wiring: "HCWGN7LYZ5E/29UXDQ4KS#JR1MP0A6V8TIB3FO"},
	{Name: "R3", Wiring: "UD8L/G7#RI0Y59PWXNAH1MEFVCZB6K234OQJST"},
	{Name: "R4", Wiring: "8BHJDT3IEX4RG61/YQ2VFKOMC0#PAWZ7SUN9L5"},
	{Name: "R5", Wiring: "JSMGCN9RHZ6BO5/XKV7Y80D1UIA24QFWT3PEL#"},
	{Name: "R6", Wiring: "7L98N6P0D5OMARWI1KEHBTZU#JGV3CXYF4QS/2"},
	{Name: "R7", Wiring: "TFDIS#JVMLP7QK5XA0O6CE1/GY2U93WRNB8ZH4"},
	{Name: "R8", Wiring: "DAXJ9EMF1ZYLVW4TBPGI58CHNU/KR7Q32O6#S0"},
	{Name: "R9", Wiring: "WM#7VHK4J36UGBIA0NYLC/5OF8XDRZ9QS2P1TE"},
	{Name: "R10", Wiring: "N2SK8#YCMAWL5Q/46D7OXZJFVBUGITP1R930HE"},
	// INOP-60
	{Name: "S1", Wiring: "21S5WE>P}7@V-A8]{£*D6T![€R(L^_C=N&<40XU9YK3ZI?%J$BG#H/FM)+OQ"},
	{Name: "S2", Wiring: "D^8%*R7AG_{6=#&U[Q!CI)+12HF4/<}Z5NX-]P0TK3@MW9£B€V>S?JL$(EYO"},
	{Name: "S3", Wiring: "&HK/1U}R9(F#6XA£<03WZJD-{QO45G^€_YC)T]P+*%!=E>?SNMI$VL8@72[B"},
	{Name: "S4", Wiring: "Q9+E*^>DVS}1K(P$#LOT{7YC_6GJ€HA&8!)N<WZ-£I]?5M/20BX=F@UR%34["},
	{Name: "S5", Wiring: "9A86=_R#{/B4MN*-]GF?1P€V+>!XY)C07%5<IWZOSJ^QT}&KDE@$[UH2L£(3"},
	{Name: "S6", Wiring: "-9[C!X0_KM%@N2S+Y5&O>?QZT<^7/(F{*R])UBWV3ED1G$HIP#£8L=4J}A€6"},
	{Name: "S7", Wiring: "8G#€>V[39TXZ=IA*}LNE5-0_%7(Q2U^&K£BR?]W@YHCPJDSM${<F)!/+461O"},
	{Name: "S8", Wiring: "}N]^GBYQ(/KHJFS3=4R1*+C£&@8XIE?PDO9M!A_06V25L)T{[#$<Z%>W7€-U"},
	{Name: "S9", Wiring: "]QHE)4%<WXY8^FMOP/2*3{_@?70I£V6}G(RBNC-L$!€K#9JU[Z&1+AT=5>DS"},
	{Name: "S10", Wiring: "XO8?M0H-2U<&F£LIZ75R$*P6}J13WA{)4B%]+9V=#^@NS![TQ(G_D/€E>KYC"},
	{Name: "S11", Wiring: "8*1X&J3I5Q+}{_E@G0WB!<%LK>FAH92$€()6]ZO^[4-YUD=/7TVR?#SNPC£M"},
	{Name: "S12", Wiring: "1^4{6N*7X$L&_D[@%)BYP}J3TRAMICS#(2?8<=!OE/9WHK>V]G-5UZ€F£+Q0"},
	{Name: "S13", Wiring: "=D}V#C8M7/L1KS@0!$Z^Q%R9GJ)W<[&_24-EF?{£3T+P5]ANY6U€*I(BOH>X"},
	{Name: "S14", Wiring: "L5$W@CF£A?}*D[UJX!3S7(1#)^>&ZY]T4%ER-+<€VM9286=NK0HPBOIG/{Q_"},
	{Name: "S15", Wiring: "P[O?S€5]RN6(£DE>X&)KV8U#CG-}<+A*@MB0TW7!/Q1L^Y42=%IJ3H{_9FZ$"},
	{Name: "S16", Wiring: "_€8!C9@£)K=I<24L>O-RJ*NH(Y1T?G#PXQ[{%}FM]BZ0VE&W637$S+A/^5UD"},
	{Name: "S17", Wiring: "PLGOA#)_(2SI€HV^9U85MR<WE=-47D?*T]0CBZ!@£1}[&$/>%YK{QNX+F6J3"},
	{Name: "S18", Wiring: "743D{E1W?£}ZR5HQU2P0KM)(9</G_A-[BTY$C>F8#OX=J@€]*6%&I+LN^VS!"},
	{Name: "S19", Wiring: "[HB96}QJ)W{7V€5@DS+£(<Y>*4/IU#!G$M2Z1E&PKL]0=?3_RNF-TA^%C8OX"},
	{Name: "S20", Wiring: "SBPR#/V?I=35JKTN4O8E9)17!Y[UH(%Z>*@+_-$]GQ£{026}<LM€^FAWD&XC"},
}

var defaultReflectors = []ReflectorDef{
	// Legacy
	{Name: "A", Wiring: "EJMZALYXVBWFCRQUONTSPIKHGD"},
	{Name: "B", Wiring: "YRUHQSLDPXNGOKMIEBFZCWVJAT"},
	{Name: "C", Wiring: "FVPJIAOYEDRZXWGCTKUQSBNMHL"},
	// INOP-38
	{Name: "D", Wiring: "/VEYCXKR7NG86JS#UHO1QB0FD5WT492ZMIL3PA"},
	{Name: "E", Wiring: "T5UYKM7V/WE4F1R02O#ACHJ3D9PNQXLB8G6ZSI"},
	{Name: "F", Wiring: "27W148V05R#YSZ9T3JMPXGCULNHDAQEI/BFOK6"},
	{Name: "G", Wiring: "6CBXSJVKLFHI1WU8RQEZOGND3T9M7Y54A2P0/#"},
	{Name: "H", Wiring: "LU/015MT642AGQ39NV8HBR#7ZYDEKOJFIXSPWC"},
	// INOP-60
	{Name: "AI", Wiring: "?38^$&@€X%£S60VQP*L(/O<I1{NY>B7-M4C=+U#5R9T_}!Z[W2]AGFDJEKH)"},
	{Name: "J", Wiring: "G#)£-=A20S€[9}&+!^J$ZWV16UIXH@</Y*]MB5PE7F{CL8(N4_Q%3OR?TDK>"},
	{Name: "K", Wiring: "T<G0}-C?VZ[^#ONY%4$A9I7=PJD8(€R65W1UM_*F+X2{K!)EB@]H>£LQS&3/"},
	{Name: "L", Wiring: "{@(R+WY<1M4SJ!X^-DL$56FOG[=I*#KUV€}?3]EQ20C%Z/A8H£N9B_P)T>7&"},
	{Name: "M", Wiring: "DJSAZI£3FB@0)Y%RWPC_?9Q7NEL#=H{[&X*V1<$!82}M5^4(/€-UK6]O+G>T"},
	{Name: "N", Wiring: "){@WVT>8#4=Q*Z?]L</F%ED^&N-£_9J+!(H3IS50MK7A$PB€RG6OCYXU[1}2"},
	{Name: "O", Wiring: "L?&U)4M#<]OAGTK%2(5ND3*0@8X=QVFS-_Z>H€{6W1RE$J+!I9}BYC£P[^/7"},
	{Name: "P", Wiring: "V^P_$?8[9X€T!-WC*6<L&AOJ{()/%43£R+GI=17NQ#Z0H>Y@S]MF}UB2E5KD"},
	{Name: "Q", Wiring: "#%9£FEP6YX&^U+=G}75)MZ_JIV[(@?<SHR€CA{N!$O1T0>/Q4]-32KLB*D8W"},
	{Name: "R", Wiring: "9W-L73!V}N+D2J£8%?#/=HB{5&>)MF6Y4EPASTKC€U^1<$XI[0GR_Z(Q]O*@"},
}
